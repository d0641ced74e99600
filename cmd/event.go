package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/calendar"
	"github.com/frahmantamala/meal-scan/internal/core/events"
	"github.com/frahmantamala/meal-scan/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect domain events: list event types, publish a sample event through the audit log`,
}

var listEventsCmd = &cobra.Command{
	Use:   "list",
	Short: "List event types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, eventType := range events.AllEventTypes {
			fmt.Println(eventType)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample event",
	Long:  `Publish a sample event of a known type to an event bus with the audit log attached`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishSampleEvent(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var eventEmployeeID string

func publishSampleEvent(eventType string) error {
	logger := logger.LoggerWrapper()

	clock := newClock(defaultBusinessConfig(), logger)
	today := clock.CurrentBusinessDate()

	var event events.Event
	switch eventType {
	case events.EventTypeScanRecorded:
		event = events.NewScanRecordedEvent(eventEmployeeID, today, "normal", 1)
	case events.EventTypeOvertimeGranted:
		event = events.NewOvertimeGrantedEvent(eventEmployeeID, today, "cli")
	case events.EventTypeOvertimeRevoked:
		event = events.NewOvertimeRevokedEvent(eventEmployeeID, today, "cli", 1)
	case events.EventTypeDayRolledOver:
		event = events.NewDayRolledOverEvent(today, clock.NextRolloverInstant())
	default:
		return fmt.Errorf("unknown event type %q, expected one of: %s",
			eventType, strings.Join(events.AllEventTypes, ", "))
	}

	eventBus := events.NewEventBus(logger)
	events.RegisterAuditLog(eventBus, logger)

	logger.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	if err := eventBus.PublishSync(context.Background(), event); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// defaultBusinessConfig lets the event commands run without a config file.
func defaultBusinessConfig() internal.BusinessConfig {
	var cfg internal.Config
	cfg.ApplyDefaults()
	cfg.Business.RolloverHour = calendar.DefaultRolloverHour
	return cfg.Business
}

func init() {
	publishEventCmd.Flags().StringVar(&eventEmployeeID, "employee", "EMP001", "Employee id carried by the sample event")

	eventCmd.AddCommand(listEventsCmd)
	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
