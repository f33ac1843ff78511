package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHaversineDistance(t *testing.T) {
	// Monas to Bundaran HI, Jakarta: roughly 2.2 km
	d := CalculateHaversineDistance(-6.175392, 106.827153, -6.195000, 106.823000)
	assert.InDelta(t, 2228, d, 30)

	assert.Zero(t, CalculateHaversineDistance(-6.2, 106.8, -6.2, 106.8))
}

func TestCountWeekdays(t *testing.T) {
	mon := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	fri := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	nextFri := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, CountWeekdays(mon, fri))
	assert.Equal(t, 10, CountWeekdays(mon, nextFri))
	assert.Equal(t, 0, CountWeekdays(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, CountWeekdays(fri, mon))
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(2, 2028)
	assert.Equal(t, "2028-02-01", first.Format(DateLayout))
	assert.Equal(t, "2028-02-29", last.Format(DateLayout))

	_, jan := MonthBounds(1, 2026)
	assert.Equal(t, 31, jan.Day())
}

func TestOverlap(t *testing.T) {
	from, to := MonthBounds(3, 2026)

	s, e, ok := Overlap(time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), from, to)
	assert.True(t, ok)
	assert.Equal(t, "2026-03-01", s.Format(DateLayout))
	assert.Equal(t, "2026-03-03", e.Format(DateLayout))

	_, _, ok = Overlap(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), from, to)
	assert.False(t, ok)
}

func TestMinutesBetween(t *testing.T) {
	in := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 600, MinutesBetween(in, in.Add(10*time.Hour)))
	assert.Equal(t, 0, MinutesBetween(in, in.Add(59*time.Second)))
	assert.Equal(t, 1, MinutesBetween(in, in.Add(119*time.Second)))
	assert.Equal(t, 0, MinutesBetween(in, in.Add(-time.Hour)))
}
