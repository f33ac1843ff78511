package company

import (
	"time"
)

// DefaultStandardWorkMinutes applies when a tenant has not configured its own.
const DefaultStandardWorkMinutes = 480

// Settings is the per-tenant configuration the attendance tracker reads.
type Settings struct {
	CompanyID           string
	Timezone            string
	OfficeLatitude      *float64
	OfficeLongitude     *float64
	AllowedRadiusMeters *float64
	StandardWorkMinutes int
}

// HasGeofence reports whether clock-in location must be checked.
func (s Settings) HasGeofence() bool {
	return s.OfficeLatitude != nil && s.OfficeLongitude != nil && s.AllowedRadiusMeters != nil
}

// Location resolves the tenant timezone, falling back to UTC.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s Settings) StandardMinutes() int {
	if s.StandardWorkMinutes > 0 {
		return s.StandardWorkMinutes
	}
	return DefaultStandardWorkMinutes
}

type Holiday struct {
	ID        string
	CompanyID string
	Date      time.Time
	Name      string
	IsActive  bool
}

// HolidaySet indexes holiday dates for quick membership checks.
type HolidaySet map[string]struct{}

func NewHolidaySet(holidays []Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		if h.IsActive {
			set[h.Date.Format("2006-01-02")] = struct{}{}
		}
	}
	return set
}

func (s HolidaySet) Contains(d time.Time) bool {
	_, ok := s[d.Format("2006-01-02")]
	return ok
}
