package stats

import (
	"strings"
	"time"
)

// DefaultOvershoot widens the end of a game day so that late tip-offs whose
// stored start time falls after the next local midnight still belong to the
// day. 14h is the largest UTC offset in use.
const DefaultOvershoot = 14 * time.Hour

// DayWindow is the half-open UTC range [Start, End) used to select a game day's matches
type DayWindow struct {
	Date  string    `json:"date"` // resolved local date, "2006-01-02"
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ResolveDayWindow computes the UTC window of a local calendar day.
// An empty or unparsable date resolves to today in loc. It never fails.
func ResolveDayWindow(date string, loc *time.Location, clock Clock, overshoot time.Duration) DayWindow {
	loc, clock = defaults(loc, clock)
	if overshoot < 0 {
		overshoot = 0
	}

	// day is the civil date at UTC midnight; instants are only derived from it
	day, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		day = civilToday(loc, clock)
	}
	next := day.AddDate(0, 0, 1)

	start := LocalMidnight(day.Year(), day.Month(), day.Day(), loc)
	end := LocalMidnight(next.Year(), next.Month(), next.Day(), loc)

	return DayWindow{
		Date:  day.Format(DateLayout),
		Start: start.UTC(),
		End:   end.Add(overshoot).UTC(),
	}
}

// Contains reports whether t falls inside [Start, End)
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Prev returns the previous calendar date
func (w DayWindow) Prev() string {
	return shiftDate(w.Date, -1)
}

// Next returns the following calendar date
func (w DayWindow) Next() string {
	return shiftDate(w.Date, 1)
}

func shiftDate(date string, days int) string {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return day.AddDate(0, 0, days).Format(DateLayout)
}
