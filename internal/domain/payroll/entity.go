package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentType enum
type ComponentType string

const (
	ComponentTypeEarning   ComponentType = "earning"
	ComponentTypeDeduction ComponentType = "deduction"
)

type CalcType string

const (
	CalcTypeFixed      CalcType = "fixed"
	CalcTypePercentage CalcType = "percentage"
)

type SalaryComponent struct {
	Name     string          `json:"name"`
	Type     ComponentType   `json:"type"`
	CalcType CalcType        `json:"calc_type"`
	Value    decimal.Decimal `json:"value"`
}

// SalaryStructure is a named list of earning and deduction components.
type SalaryStructure struct {
	ID         string            `json:"id"`
	CompanyID  string            `json:"company_id"`
	Name       string            `json:"name"`
	Components []SalaryComponent `json:"components"`
	IsActive   bool              `json:"is_active"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// EmployeeSalary assigns a structure and base pay for [EffectiveFrom, EffectiveTo].
// A nil EffectiveTo is open ended.
type EmployeeSalary struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	EmployeeID    string          `json:"employee_id"`
	StructureID   string          `json:"structure_id"`
	BasePay       decimal.Decimal `json:"base_pay"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	// Joined
	Structure *SalaryStructure `json:"structure,omitempty"`
}

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft      RunStatus = "DRAFT"
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusComputed   RunStatus = "COMPUTED"
	RunStatusApproved   RunStatus = "APPROVED"
	RunStatusPaid       RunStatus = "PAID"
)

// PayrollRun is unique per (company, month, year).
type PayrollRun struct {
	ID              string
	CompanyID       string
	Month           int
	Year            int
	Status          RunStatus
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	ProcessedCount  int
	CreatedBy       *string
	ComputedAt      *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      *string
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsReleased reports whether employees may see the run's payslips.
func (r PayrollRun) IsReleased() bool {
	return r.Status == RunStatusApproved || r.Status == RunStatusPaid
}

type PayslipLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Payslip struct {
	ID              string
	RunID           string
	CompanyID       string
	EmployeeID      string
	Month           int
	Year            int
	WorkingDays     int
	PresentDays     decimal.Decimal
	LeaveDays       decimal.Decimal
	LopDays         decimal.Decimal
	OTHours         decimal.Decimal
	BasePay         decimal.Decimal
	Earnings        []PayslipLine
	Deductions      []PayslipLine
	GrossPay        decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	OTPay           decimal.Decimal
	CreatedAt       time.Time

	// Joined
	EmployeeName string
	EmployeeCode string
	RunStatus    RunStatus
}
