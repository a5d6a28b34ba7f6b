package leave

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil date at day granularity (leave is booked in whole days)
// =============================================================================

// Date is a calendar day. The zero value is "no date". All comparisons are
// on the normalized midnight-UTC instant, so two Dates built from different
// wall-clock times on the same day compare equal.
type Date struct {
	Time time.Time
}

// Constructors

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison

func (d Date) Before(o Date) bool        { return d.normalize().Before(o.normalize()) }
func (d Date) After(o Date) bool         { return d.normalize().After(o.normalize()) }
func (d Date) Equal(o Date) bool         { return d.normalize().Equal(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic and properties

func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) Year() int          { return d.Time.Year() }
func (d Date) IsZero() bool       { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// InclusiveDays returns the calendar day count of [start, end] counting both
// endpoints: InclusiveDays(d, d) == 1. Callers must ensure end >= start.
func InclusiveDays(start, end Date) int {
	return int(end.normalize().Sub(start.normalize()).Hours()/24) + 1
}

// =============================================================================
// CLOCK - Injectable "today" for testability
// =============================================================================

// Clock supplies the current date. The engine never calls time.Now for
// policy decisions directly; tests substitute a FixedClock.
type Clock interface {
	Today() Date
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Today() Date { return DateOf(time.Now().UTC()) }

// FixedClock always reports the same date.
type FixedClock struct {
	Date Date
}

func (c FixedClock) Today() Date { return c.Date }
