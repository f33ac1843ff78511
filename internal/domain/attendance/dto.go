package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockInRequest struct {
	CompanyID  string   `json:"-"`
	EmployeeID string   `json:"-"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Source     Source   `json:"source"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateIdentity(r.CompanyID, r.EmployeeID)...)
	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if r.Source != "" && !validator.IsInSlice(string(r.Source), []string{
		string(SourceWeb), string(SourceMobile), string(SourceBiometric),
	}) {
		errs = append(errs, validator.ValidationError{
			Field:   "source",
			Message: "source must be one of WEB, MOBILE, BIOMETRIC",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClockOutRequest struct {
	CompanyID    string   `json:"-"`
	EmployeeID   string   `json:"-"`
	BreakMinutes *int     `json:"break_minutes"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateIdentity(r.CompanyID, r.EmployeeID)...)
	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_minutes",
			Message: "break_minutes cannot be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveOvertimeRequest struct {
	CompanyID       string     `json:"-"`
	RecordID        string     `json:"-"`
	Approver        user.Actor `json:"-"`
	ApprovedMinutes int        `json:"approved_minutes"`
}

func (r *ApproveOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.RecordID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "attendance id is required"})
	}
	if r.ApprovedMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "approved_minutes", Message: "approved_minutes cannot be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateIdentity(companyID, employeeID string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(companyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id is required"})
	}
	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	return errs
}

func validateCoordinates(lat, lon *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if (lat == nil) != (lon == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be provided together",
		})
		return errs
	}
	if lat != nil && !validator.IsValidLatitude(*lat) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude must be a finite number between -90 and 90"})
	}
	if lon != nil && !validator.IsValidLongitude(*lon) {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "longitude must be a finite number between -180 and 180"})
	}
	return errs
}

// ========================================
// RESPONSES
// ========================================

type SessionResponse struct {
	InTime         time.Time  `json:"in_time"`
	OutTime        *time.Time `json:"out_time,omitempty"`
	SessionMinutes *int       `json:"session_minutes,omitempty"`
}

type AttendanceResponse struct {
	ID                  string            `json:"id"`
	EmployeeID          string            `json:"employee_id"`
	Date                string            `json:"date"`
	ClockInTime         *time.Time        `json:"clock_in_time,omitempty"`
	ClockOutTime        *time.Time        `json:"clock_out_time,omitempty"`
	BreakMinutes        int               `json:"break_minutes"`
	WorkedMinutes       int               `json:"worked_minutes"`
	OTMinutesCalculated *int              `json:"ot_minutes_calculated,omitempty"`
	OTMinutesApproved   *int              `json:"ot_minutes_approved,omitempty"`
	Status              Status            `json:"status"`
	StandardWorkMinutes int               `json:"standard_work_minutes"`
	Source              Source            `json:"source"`
	Sessions            []SessionResponse `json:"sessions"`
}

type TodayStatusResponse struct {
	ClockedIn bool                `json:"clocked_in"`
	Record    *AttendanceResponse `json:"record,omitempty"`
}

type ApproveOvertimeResponse struct {
	Record       AttendanceResponse          `json:"record"`
	MonthlyLimit overtime.MonthlyLimitResult `json:"monthly_limit"`
}

func ToResponse(r *AttendanceRecord) AttendanceResponse {
	sessions := make([]SessionResponse, 0, len(r.Sessions))
	for _, s := range r.Sessions {
		sessions = append(sessions, SessionResponse{
			InTime:         s.InTime,
			OutTime:        s.OutTime,
			SessionMinutes: s.SessionMinutes,
		})
	}
	return AttendanceResponse{
		ID:                  r.ID,
		EmployeeID:          r.EmployeeID,
		Date:                r.Date.Format("2006-01-02"),
		ClockInTime:         r.ClockInTime,
		ClockOutTime:        r.ClockOutTime,
		BreakMinutes:        r.BreakMinutes,
		WorkedMinutes:       r.WorkedMinutes,
		OTMinutesCalculated: r.OTMinutesCalculated,
		OTMinutesApproved:   r.OTMinutesApproved,
		Status:              r.Status,
		StandardWorkMinutes: r.StandardWorkMinutes,
		Source:              r.Source,
		Sessions:            sessions,
	}
}
