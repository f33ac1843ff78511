package validator

import (
	"math"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2026-01-31"); !ok {
		t.Errorf("IsValidDate(2026-01-31) = false, want true")
	}
	for _, s := range []string{"2026-02-30", "31-01-2026", ""} {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	for m := 1; m <= 12; m++ {
		if !IsValidMonth(m) {
			t.Errorf("IsValidMonth(%d) = false, want true", m)
		}
	}
	for _, m := range []int{0, 13, -1} {
		if IsValidMonth(m) {
			t.Errorf("IsValidMonth(%d) = true, want false", m)
		}
	}
}

func TestCoordinates(t *testing.T) {
	cases := []struct {
		lat, lon float64
		want     bool
	}{
		{-6.2, 106.8, true},
		{90, 180, true},
		{math.NaN(), 106.8, false},
		{-6.2, math.Inf(1), false},
		{91, 0, false},
		{0, -181, false},
	}
	for _, c := range cases {
		got := IsValidLatitude(c.lat) && IsValidLongitude(c.lon)
		if got != c.want {
			t.Errorf("coordinate (%v, %v) valid = %v, want %v", c.lat, c.lon, got, c.want)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "month", Message: "must be between 1 and 12"},
		{Field: "year", Message: "is required"},
	}
	if got := errs.Error(); got != "month: must be between 1 and 12; year: is required" {
		t.Errorf("Error() = %q", got)
	}
	m := errs.ToMap()
	if m["year"] != "is required" || len(m) != 2 {
		t.Errorf("ToMap() = %v", m)
	}
}
