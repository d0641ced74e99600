// Package rollover announces the start of each business day. It never
// touches stored data: the daily reset falls out of date-keyed queries.
package rollover

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/meal-scan/internal/calendar"
	"github.com/frahmantamala/meal-scan/internal/core/events"
)

const DefaultCheckInterval = time.Minute

// Clock is the part of the business calendar the notifier polls.
type Clock interface {
	CurrentBusinessDate() time.Time
	IsRolloverInstant() bool
	NextRolloverInstant() time.Time
}

type Notifier struct {
	clock     Clock
	publisher events.Publisher
	interval  time.Duration
	logger    *slog.Logger

	mu           sync.Mutex
	lastRollover time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	stop   sync.Once
}

// NewNotifier builds a notifier. publisher may be nil, in which case the
// rollover is only logged.
func NewNotifier(clock Clock, publisher events.Publisher, interval time.Duration, logger *slog.Logger) *Notifier {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Notifier{
		clock:     clock,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
}

// Start checks once immediately and then on every tick until Stop is called
// or ctx is done. Calling Start more than once has no effect.
func (n *Notifier) Start(ctx context.Context) {
	n.once.Do(func() {
		ctx, n.cancel = context.WithCancel(ctx)

		n.logger.Info("rollover notifier started",
			"interval", n.interval.String(),
			"next_rollover", n.clock.NextRolloverInstant().Format(time.RFC3339))

		n.Check(ctx)

		n.wg.Add(1)
		go n.run(ctx)
	})
}

func (n *Notifier) run(ctx context.Context) {
	defer n.wg.Done()

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.Check(ctx)
		case <-ctx.Done():
			n.logger.Info("rollover notifier shutting down")
			return
		}
	}
}

// Stop cancels the loop and waits for it to exit.
func (n *Notifier) Stop() {
	n.stop.Do(func() {
		if n.cancel != nil {
			n.cancel()
		}
		n.wg.Wait()
	})
}

// Check fires the rollover when the clock is inside the rollover hour and
// the current business date has not been announced yet. It reports whether
// it fired.
func (n *Notifier) Check(ctx context.Context) bool {
	if !n.clock.IsRolloverInstant() {
		return false
	}

	today := n.clock.CurrentBusinessDate()

	n.mu.Lock()
	if n.lastRollover.Equal(today) {
		n.mu.Unlock()
		return false
	}
	n.lastRollover = today
	n.mu.Unlock()

	next := n.clock.NextRolloverInstant()
	n.logger.Info("daily rollover",
		"business_date", calendar.FormatDate(today),
		"next_rollover", next.Format(time.RFC3339))

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, events.NewDayRolledOverEvent(today, next)); err != nil {
			n.logger.Error("failed to publish rollover event",
				"business_date", calendar.FormatDate(today),
				"error", err)
		}
	}
	return true
}

// LastRollover is the business date of the most recent announcement, zero
// before the first one.
func (n *Notifier) LastRollover() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastRollover
}
