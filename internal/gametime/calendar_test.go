package gametime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCalendarFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultSecondsPerDay, NewCalendar(0).SecondsPerDay)
	assert.Equal(t, DefaultSecondsPerDay, NewCalendar(-5).SecondsPerDay)
	assert.Equal(t, 60, NewCalendar(60).SecondsPerDay)
}

func TestDaysBetween(t *testing.T) {
	cal := NewCalendar(60)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		b    time.Time
		want int
	}{
		{"same instant", start, 0},
		{"just under one day", start.Add(59 * time.Second), 0},
		{"exactly one day", start.Add(60 * time.Second), 1},
		{"several days", start.Add(7*time.Minute + 30*time.Second), 7},
		{"backwards", start.Add(-2 * time.Minute), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.DaysBetween(start, tt.b))
		})
	}
}

func TestDaysSinceNeverNegative(t *testing.T) {
	cal := NewCalendar(60)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, cal.DaysSince(start, start.Add(3*time.Minute)))
	assert.Equal(t, 0, cal.DaysSince(start, start.Add(-3*time.Minute)))
}

func TestAddDaysRoundTrips(t *testing.T) {
	cal := NewCalendar(2880)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	end := cal.AddDays(start, 14)
	assert.Equal(t, 14, cal.DaysBetween(start, end))
	assert.Equal(t, start, cal.AddDays(end, -14))
}
