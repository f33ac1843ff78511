package payroll

import "context"

type PayrollService interface {
	CreateStructure(ctx context.Context, req CreateStructureRequest) (SalaryStructure, error)
	// AssignSalary closes the employee's open assignment the day before the new one starts.
	AssignSalary(ctx context.Context, req AssignSalaryRequest) (EmployeeSalary, error)

	// ComputePayslip returns nil, nil when the employee has no salary for the period.
	ComputePayslip(ctx context.Context, companyID, employeeID string, month, year int) (*Payslip, error)

	CreateRun(ctx context.Context, req CreateRunRequest) (PayrollRunResponse, error)
	// ProcessRun computes payslips for every active employee. On failure the
	// run is returned to DRAFT with no payslips.
	ProcessRun(ctx context.Context, companyID, runID string) (PayrollRunResponse, error)
	ApproveRun(ctx context.Context, companyID, runID, approverID string) (PayrollRunResponse, error)
	MarkAsPaid(ctx context.Context, companyID, runID string) (PayrollRunResponse, error)
	DeleteRun(ctx context.Context, companyID, runID string) error
	GetRun(ctx context.Context, companyID, runID string) (PayrollRunResponse, error)

	ListPayslips(ctx context.Context, companyID, runID string) ([]PayslipResponse, error)
	GetMyPayslips(ctx context.Context, companyID, employeeID string) ([]PayslipResponse, error)
	// GetMyPayslip returns ErrPayslipNotFound for payslips of unreleased runs.
	GetMyPayslip(ctx context.Context, companyID, employeeID, payslipID string) (PayslipResponse, error)

	// ExportRun renders the run's payslips as an XLSX payroll register.
	ExportRun(ctx context.Context, companyID, runID string) ([]byte, error)
}
