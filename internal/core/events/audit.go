package events

import (
	"context"
	"log/slog"
)

// RegisterAuditLog subscribes a structured-log writer to every event type.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	for _, eventType := range AllEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
			logger.Info("audit",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"occurred_at", event.OccurredAt(),
				"payload", event.Payload())
			return nil
		})
	}
}
