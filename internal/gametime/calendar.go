// Package gametime converts between wall-clock time and "game days".
//
// A game day is a configurable number of real seconds. Every term length,
// accrual interval, and overdue check in the ledger is expressed in game days,
// so all day arithmetic goes through a Calendar instead of time.Duration math
// scattered across services.
package gametime

import "time"

// DefaultSecondsPerDay matches one in-game day of 48 real minutes.
const DefaultSecondsPerDay = 2880

// Calendar maps wall time to game days.
type Calendar struct {
	SecondsPerDay int
}

// NewCalendar returns a Calendar, falling back to DefaultSecondsPerDay when
// secondsPerDay is not positive.
func NewCalendar(secondsPerDay int) Calendar {
	if secondsPerDay <= 0 {
		secondsPerDay = DefaultSecondsPerDay
	}
	return Calendar{SecondsPerDay: secondsPerDay}
}

// DayLength returns the duration of one game day.
func (c Calendar) DayLength() time.Duration {
	return time.Duration(c.SecondsPerDay) * time.Second
}

// AddDays returns t advanced by n game days.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * c.DayLength())
}

// DaysBetween returns the number of whole game days from a to b.
// Negative when b precedes a.
func (c Calendar) DaysBetween(a, b time.Time) int {
	secs := b.Unix() - a.Unix()
	return int(secs / int64(c.SecondsPerDay))
}

// DaysSince returns the number of whole game days elapsed since t, never
// negative.
func (c Calendar) DaysSince(t, now time.Time) int {
	d := c.DaysBetween(t, now)
	if d < 0 {
		return 0
	}
	return d
}
