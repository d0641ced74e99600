package calendar

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultTimezone     = "Asia/Jakarta"
	DefaultRolloverHour = 6

	// DateLayout is the wire format of a business date.
	DateLayout = "2006-01-02"

	fallbackOffset = 7 * 60 * 60
)

// Clock answers business-date questions in the operating timezone (UTC+7).
// Business dates are returned as midnight UTC of the local calendar day so
// they compare and store as plain dates.
type Clock struct {
	loc          *time.Location
	rolloverHour int
	now          func() time.Time
}

type Option func(*Clock)

// WithNow overrides the wall clock, mainly for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

func WithRolloverHour(hour int) Option {
	return func(c *Clock) {
		if hour >= 0 && hour <= 23 {
			c.rolloverHour = hour
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(c *Clock) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func NewClock(loc *time.Location, opts ...Option) *Clock {
	if loc == nil {
		loc = time.FixedZone("UTC+7", fallbackOffset)
	}
	c := &Clock{
		loc:          loc,
		rolloverHour: DefaultRolloverHour,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadLocation resolves the named zone and falls back to a fixed UTC+7 offset
// when the zone database is unavailable. It never fails.
func LoadLocation(name string, logger *slog.Logger) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if logger != nil {
			logger.Warn("timezone unavailable, using fixed UTC+7 offset", "timezone", name, "error", err)
		}
		return time.FixedZone("UTC+7", fallbackOffset)
	}
	return loc
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

func (c *Clock) RolloverHour() int {
	return c.rolloverHour
}

// Now returns the current instant in the operating timezone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// CurrentBusinessDate is the local calendar date of now.
func (c *Clock) CurrentBusinessDate() time.Time {
	return c.DateOf(c.now())
}

// DateOf maps an instant to its business date.
func (c *Clock) DateOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// IsRolloverInstant reports whether the local hour equals the rollover hour.
// It stays true for the whole hour; callers dedupe per business date.
func (c *Clock) IsRolloverInstant() bool {
	return c.Now().Hour() == c.rolloverHour
}

// NextRolloverInstant is the next local rollover time strictly after now.
func (c *Clock) NextRolloverInstant() time.Time {
	now := c.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), c.rolloverHour, 0, 0, 0, c.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Date builds a business date from its parts.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// DaysBetween counts calendar days from start to end, inclusive of both.
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
