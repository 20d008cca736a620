// Package stats turns settled pick rows into win/loss figures: outcome
// classification, the UTC window of a local game day, win-rate aggregation
// and the per-day trend series behind the dashboard chart.
//
// Every function here is pure. The only ambient input is "now", which is
// read through a Clock so callers and tests can pin today's date.
package stats

import "time"

// DateLayout is the calendar-day format used for match dates and query params
const DateLayout = "2006-01-02"

// Clock supplies the current instant
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.At
}

// Today returns the first instant of the current local day in loc
func Today(loc *time.Location, clock Clock) time.Time {
	loc, clock = defaults(loc, clock)
	day := civilToday(loc, clock)
	return LocalMidnight(day.Year(), day.Month(), day.Day(), loc)
}

// LocalMidnight returns the first instant of the calendar day in loc. In zones
// where a DST jump skips midnight the day starts at the transition.
func LocalMidnight(year int, month time.Month, day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	civil := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	t := time.Date(civil.Year(), civil.Month(), civil.Day(), 0, 0, 0, 0, loc)

	if y, m, d := t.Date(); y != civil.Year() || m != civil.Month() || d != civil.Day() {
		if _, end := t.ZoneBounds(); !end.IsZero() {
			t = end.In(loc)
		}
	}
	return t
}

// civilToday returns the current local calendar date as UTC midnight, so day
// arithmetic on it never crosses a DST transition
func civilToday(loc *time.Location, clock Clock) time.Time {
	now := clock.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func defaults(loc *time.Location, clock Clock) (*time.Location, Clock) {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return loc, clock
}
