package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type SalaryStructureRepository interface {
	Create(ctx context.Context, s *SalaryStructure) error
	// GetByID returns ErrSalaryStructureMissing.
	GetByID(ctx context.Context, companyID, id string) (*SalaryStructure, error)
}

type EmployeeSalaryRepository interface {
	// GetEffective returns the assignment overlapping [from, to] with the
	// latest EffectiveFrom, joined with its structure. nil, nil when none.
	GetEffective(ctx context.Context, companyID, employeeID string, from, to time.Time) (*EmployeeSalary, error)
	// GetOpen returns the assignment without an end date, nil, nil when none.
	GetOpen(ctx context.Context, companyID, employeeID string) (*EmployeeSalary, error)
	Close(ctx context.Context, id string, effectiveTo time.Time) error
	Create(ctx context.Context, s *EmployeeSalary) error
}

type RunTotals struct {
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	ProcessedCount  int
}

type PayrollRunRepository interface {
	// Create yields ErrPayrollRunExists on a duplicate period.
	Create(ctx context.Context, run *PayrollRun) error
	// GetByID returns ErrPayrollRunNotFound.
	GetByID(ctx context.Context, companyID, id string) (*PayrollRun, error)
	// Transition moves the run from one status to another in a single
	// conditional update. ErrInvalidRunState when the run is not in from.
	Transition(ctx context.Context, companyID, id string, from, to RunStatus, at time.Time, actorID *string) error
	// Complete stores totals and moves PROCESSING to COMPUTED.
	Complete(ctx context.Context, companyID, id string, totals RunTotals, at time.Time) error
	// Delete removes a DRAFT run with its payslips. ErrInvalidRunState otherwise.
	Delete(ctx context.Context, companyID, id string) error
}

type PayslipRepository interface {
	Create(ctx context.Context, p *Payslip) error
	DeleteByRun(ctx context.Context, runID string) error
	ListByRun(ctx context.Context, companyID, runID string) ([]Payslip, error)
	// ListReleasedByEmployee only returns payslips of APPROVED or PAID runs.
	ListReleasedByEmployee(ctx context.Context, companyID, employeeID string) ([]Payslip, error)
}
