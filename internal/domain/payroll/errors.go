package payroll

import "errors"

var (
	ErrPayrollRunNotFound     = errors.New("payroll run not found")
	ErrPayrollRunExists       = errors.New("payroll run already exists for this period")
	ErrInvalidRunState        = errors.New("payroll run is not in the required state")
	ErrSalaryStructureMissing = errors.New("salary structure not found")
	ErrPayslipNotFound        = errors.New("payslip not found")
	ErrSalaryOverlap          = errors.New("salary assignment must start after the current one")
)
