package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLeaveRequestRequest struct {
	CompanyID   string  `json:"-"`
	EmployeeID  string  `json:"-"`
	LeaveTypeID string  `json:"leave_type_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Reason      *string `json:"reason"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{Field: "leave_type_id", Message: "leave_type_id is required"})
	}
	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Dates returns the parsed range. Call after Validate.
func (r *CreateLeaveRequestRequest) Dates() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type RejectRequestRequest struct {
	Reason string `json:"reason"`
}

type TriggerAccrualRequest struct {
	Month        int      `json:"month"`
	Year         int      `json:"year"`
	EmployeeIDs  []string `json:"employee_ids,omitempty"`
	LeaveTypeIDs []string `json:"leave_type_ids,omitempty"`
}

func (r *TriggerAccrualRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}
	if r.Year < 2000 || r.Year > 9999 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a four digit year"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ============= Responses =============

type LeaveRequestResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	LeaveTypeID     string          `json:"leave_type_id"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	TotalDays       decimal.Decimal `json:"total_days"`
	Reason          *string         `json:"reason,omitempty"`
	Status          RequestStatus   `json:"status"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func ToRequestResponse(r *LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		LeaveTypeID:     r.LeaveTypeID,
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		TotalDays:       r.TotalDays,
		Reason:          r.Reason,
		Status:          r.Status,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
	}
}

type BalanceResponse struct {
	LeaveTypeID   string          `json:"leave_type_id"`
	LeaveTypeCode string          `json:"leave_type_code"`
	LeaveTypeName string          `json:"leave_type_name"`
	Year          int             `json:"year"`
	TotalDays     decimal.Decimal `json:"total_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	PendingDays   decimal.Decimal `json:"pending_days"`
	CarriedOver   decimal.Decimal `json:"carried_over"`
	Available     decimal.Decimal `json:"available"`
}

type AccrualEntryResponse struct {
	EmployeeID    string          `json:"employee_id"`
	LeaveTypeID   string          `json:"leave_type_id"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	AccrualDays   decimal.Decimal `json:"accrual_days"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CapApplied    bool            `json:"cap_applied"`
}

type AccrualRunResponse struct {
	ID             string                 `json:"id"`
	Month          int                    `json:"month"`
	Year           int                    `json:"year"`
	FiscalYear     int                    `json:"fiscal_year"`
	Status         AccrualRunStatus       `json:"status"`
	TriggerType    TriggerType            `json:"trigger_type"`
	ProcessedCount int                    `json:"processed_count"`
	FailedCount    int                    `json:"failed_count"`
	ErrorMessage   *string                `json:"error_message,omitempty"`
	StartedAt      time.Time              `json:"started_at"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	Entries        []AccrualEntryResponse `json:"entries,omitempty"`
}

func ToAccrualRunResponse(run *AccrualRun, entries []AccrualEntry) AccrualRunResponse {
	resp := AccrualRunResponse{
		ID:             run.ID,
		Month:          run.Month,
		Year:           run.Year,
		FiscalYear:     run.FiscalYear,
		Status:         run.Status,
		TriggerType:    run.TriggerType,
		ProcessedCount: run.ProcessedCount,
		FailedCount:    run.FailedCount,
		ErrorMessage:   run.ErrorMessage,
		StartedAt:      run.StartedAt,
		CompletedAt:    run.CompletedAt,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, AccrualEntryResponse{
			EmployeeID:    e.EmployeeID,
			LeaveTypeID:   e.LeaveTypeID,
			BalanceBefore: e.BalanceBefore,
			AccrualDays:   e.AccrualDays,
			BalanceAfter:  e.BalanceAfter,
			CapApplied:    e.CapApplied,
		})
	}
	return resp
}
