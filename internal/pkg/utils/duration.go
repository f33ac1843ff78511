package utils

import "time"

// MinutesBetween returns whole minutes elapsed from start to end, floored and never negative.
func MinutesBetween(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// NonNegative clamps n at zero.
func NonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
