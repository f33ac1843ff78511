package utils

import "time"

const DateLayout = "2006-01-02"

// CivilDate returns the calendar date of t as a UTC midnight value, which is how
// dates are stored and compared throughout the engine.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// MonthBounds returns the first and last calendar date of the month.
func MonthBounds(month, year int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// EachDate calls fn for every date from start to end inclusive.
func EachDate(start, end time.Time, fn func(d time.Time)) {
	for d := CivilDate(start); !d.After(CivilDate(end)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// CountWeekdays counts Monday to Friday dates between start and end inclusive.
func CountWeekdays(start, end time.Time) int {
	n := 0
	EachDate(start, end, func(d time.Time) {
		if !IsWeekend(d) {
			n++
		}
	})
	return n
}

// Overlap clips [start, end] to [from, to]. ok is false when the ranges are disjoint.
func Overlap(start, end, from, to time.Time) (time.Time, time.Time, bool) {
	s, e := CivilDate(start), CivilDate(end)
	if s.Before(from) {
		s = from
	}
	if e.After(to) {
		e = to
	}
	return s, e, !s.After(e)
}
