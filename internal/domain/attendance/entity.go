package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusWFH     Status = "WFH"
	StatusHalfDay Status = "HALF_DAY"
	StatusAbsent  Status = "ABSENT"
	StatusLeave   Status = "LEAVE"
)

type Source string

const (
	SourceWeb       Source = "WEB"
	SourceMobile    Source = "MOBILE"
	SourceBiometric Source = "BIOMETRIC"
	SourceSystem    Source = "SYSTEM"
)

// AttendanceRecord is the single row per (company, employee, date).
type AttendanceRecord struct {
	ID                  string
	CompanyID           string
	EmployeeID          string
	Date                time.Time
	ClockInTime         *time.Time
	ClockOutTime        *time.Time
	BreakMinutes        int
	WorkedMinutes       int
	OTMinutesCalculated *int
	OTMinutesApproved   *int
	Status              Status
	StandardWorkMinutes int
	Source              Source
	ClockInLatitude     *float64
	ClockInLongitude    *float64
	ClockOutLatitude    *float64
	ClockOutLongitude   *float64
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Loaded with the record, ordered by InTime.
	Sessions []AttendanceSession
}

type AttendanceSession struct {
	ID             string
	RecordID       string
	InTime         time.Time
	OutTime        *time.Time
	SessionMinutes *int
	CreatedAt      time.Time
}

// OpenSession returns the session without an out time, if any.
func (r *AttendanceRecord) OpenSession() *AttendanceSession {
	for i := range r.Sessions {
		if r.Sessions[i].OutTime == nil {
			return &r.Sessions[i]
		}
	}
	return nil
}

// LatestSession returns the most recently started session.
func (r *AttendanceRecord) LatestSession() *AttendanceSession {
	var latest *AttendanceSession
	for i := range r.Sessions {
		if latest == nil || r.Sessions[i].InTime.After(latest.InTime) {
			latest = &r.Sessions[i]
		}
	}
	return latest
}

// IsClockedIn is true when the latest session is still open.
func (r *AttendanceRecord) IsClockedIn() bool {
	latest := r.LatestSession()
	return latest != nil && latest.OutTime == nil
}

// TotalSessionMinutes sums closed sessions.
func (r *AttendanceRecord) TotalSessionMinutes() int {
	total := 0
	for _, s := range r.Sessions {
		if s.SessionMinutes != nil {
			total += *s.SessionMinutes
		}
	}
	return total
}

// EffectiveOTMinutes prefers the approved figure and falls back to the calculated one.
func (r *AttendanceRecord) EffectiveOTMinutes() int {
	if r.OTMinutesApproved != nil {
		return *r.OTMinutesApproved
	}
	if r.OTMinutesCalculated != nil {
		return *r.OTMinutesCalculated
	}
	return 0
}

var half = decimal.NewFromFloat(0.5)

// PresenceWeight is how much of a day the record counts as present for payroll.
func (r *AttendanceRecord) PresenceWeight() decimal.Decimal {
	switch r.Status {
	case StatusPresent, StatusWFH:
		return decimal.NewFromInt(1)
	case StatusHalfDay:
		return half
	default:
		return decimal.Zero
	}
}
