package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateStructureRequest struct {
	CompanyID  string            `json:"-"`
	Name       string            `json:"name"`
	Components []SalaryComponent `json:"components"`
}

func (r *CreateStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	for i, c := range r.Components {
		field := "components[" + validator.Itoa(i) + "]"
		if validator.IsEmpty(c.Name) {
			errs = append(errs, validator.ValidationError{Field: field + ".name", Message: "name is required"})
		}
		if c.Type != ComponentTypeEarning && c.Type != ComponentTypeDeduction {
			errs = append(errs, validator.ValidationError{Field: field + ".type", Message: "type must be earning or deduction"})
		}
		if c.CalcType != CalcTypeFixed && c.CalcType != CalcTypePercentage {
			errs = append(errs, validator.ValidationError{Field: field + ".calc_type", Message: "calc_type must be fixed or percentage"})
		}
		if c.Value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".value", Message: "value cannot be negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignSalaryRequest struct {
	CompanyID     string          `json:"-"`
	EmployeeID    string          `json:"employee_id"`
	StructureID   string          `json:"structure_id"`
	BasePay       decimal.Decimal `json:"base_pay"`
	EffectiveFrom string          `json:"effective_from"`
}

func (r *AssignSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.StructureID) {
		errs = append(errs, validator.ValidationError{Field: "structure_id", Message: "structure_id is required"})
	}
	if !r.BasePay.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "base_pay", Message: "base_pay must be greater than zero"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "effective_from must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateRunRequest struct {
	CompanyID string  `json:"-"`
	CreatedBy *string `json:"-"`
	Month     int     `json:"month"`
	Year      int     `json:"year"`
}

func (r *CreateRunRequest) Validate() error {
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

type PayrollRunResponse struct {
	ID              string          `json:"id"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	Status          RunStatus       `json:"status"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	ProcessedCount  int             `json:"processed_count"`
	ComputedAt      *time.Time      `json:"computed_at,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
}

func ToRunResponse(r *PayrollRun) PayrollRunResponse {
	return PayrollRunResponse{
		ID:              r.ID,
		Month:           r.Month,
		Year:            r.Year,
		Status:          r.Status,
		TotalGross:      r.TotalGross,
		TotalDeductions: r.TotalDeductions,
		TotalNet:        r.TotalNet,
		ProcessedCount:  r.ProcessedCount,
		ComputedAt:      r.ComputedAt,
		ApprovedAt:      r.ApprovedAt,
		PaidAt:          r.PaidAt,
	}
}

type PayslipResponse struct {
	ID              string          `json:"id"`
	RunID           string          `json:"run_id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name,omitempty"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	WorkingDays     int             `json:"working_days"`
	PresentDays     decimal.Decimal `json:"present_days"`
	LeaveDays       decimal.Decimal `json:"leave_days"`
	LopDays         decimal.Decimal `json:"lop_days"`
	OTHours         decimal.Decimal `json:"ot_hours"`
	BasePay         decimal.Decimal `json:"base_pay"`
	Earnings        []PayslipLine   `json:"earnings"`
	Deductions      []PayslipLine   `json:"deductions"`
	OTPay           decimal.Decimal `json:"ot_pay"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
}

func ToPayslipResponse(p *Payslip) PayslipResponse {
	return PayslipResponse{
		ID:              p.ID,
		RunID:           p.RunID,
		EmployeeID:      p.EmployeeID,
		EmployeeName:    p.EmployeeName,
		Month:           p.Month,
		Year:            p.Year,
		WorkingDays:     p.WorkingDays,
		PresentDays:     p.PresentDays,
		LeaveDays:       p.LeaveDays,
		LopDays:         p.LopDays,
		OTHours:         p.OTHours,
		BasePay:         p.BasePay,
		Earnings:        p.Earnings,
		Deductions:      p.Deductions,
		OTPay:           p.OTPay,
		GrossPay:        p.GrossPay,
		TotalDeductions: p.TotalDeductions,
		NetPay:          p.NetPay,
	}
}
