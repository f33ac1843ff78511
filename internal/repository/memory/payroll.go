package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
)

type salaryStructureRepository struct {
	s *Store
}

func NewSalaryStructureRepository(s *Store) payroll.SalaryStructureRepository {
	return &salaryStructureRepository{s: s}
}

func (r *salaryStructureRepository) Create(ctx context.Context, st *payroll.SalaryStructure) error {
	defer r.s.lock(ctx)()

	if st.ID == "" {
		st.ID = newID()
	}
	now := r.s.now()
	st.CreatedAt, st.UpdatedAt = now, now
	stored := *st
	stored.Components = append([]payroll.SalaryComponent(nil), st.Components...)
	r.s.d.structures[st.ID] = stored
	return nil
}

func (r *salaryStructureRepository) GetByID(ctx context.Context, companyID, id string) (*payroll.SalaryStructure, error) {
	defer r.s.rlock(ctx)()

	st, ok := r.s.d.structures[id]
	if !ok || st.CompanyID != companyID {
		return nil, payroll.ErrSalaryStructureMissing
	}
	return &st, nil
}

type employeeSalaryRepository struct {
	s *Store
}

func NewEmployeeSalaryRepository(s *Store) payroll.EmployeeSalaryRepository {
	return &employeeSalaryRepository{s: s}
}

func (r *employeeSalaryRepository) GetEffective(ctx context.Context, companyID, employeeID string, from, to time.Time) (*payroll.EmployeeSalary, error) {
	defer r.s.rlock(ctx)()

	var best *payroll.EmployeeSalary
	for _, sal := range r.s.d.salaries {
		if sal.CompanyID != companyID || sal.EmployeeID != employeeID {
			continue
		}
		if sal.EffectiveFrom.After(to) || (sal.EffectiveTo != nil && sal.EffectiveTo.Before(from)) {
			continue
		}
		if best == nil || sal.EffectiveFrom.After(best.EffectiveFrom) {
			candidate := sal
			best = &candidate
		}
	}
	if best == nil {
		return nil, nil
	}
	if st, ok := r.s.d.structures[best.StructureID]; ok {
		best.Structure = &st
	}
	return best, nil
}

func (r *employeeSalaryRepository) GetOpen(ctx context.Context, companyID, employeeID string) (*payroll.EmployeeSalary, error) {
	defer r.s.rlock(ctx)()

	for _, sal := range r.s.d.salaries {
		if sal.CompanyID == companyID && sal.EmployeeID == employeeID && sal.EffectiveTo == nil {
			out := sal
			return &out, nil
		}
	}
	return nil, nil
}

func (r *employeeSalaryRepository) Close(ctx context.Context, id string, effectiveTo time.Time) error {
	defer r.s.lock(ctx)()

	sal, ok := r.s.d.salaries[id]
	if !ok {
		return payroll.ErrSalaryStructureMissing
	}
	sal.EffectiveTo = &effectiveTo
	r.s.d.salaries[id] = sal
	return nil
}

func (r *employeeSalaryRepository) Create(ctx context.Context, sal *payroll.EmployeeSalary) error {
	defer r.s.lock(ctx)()

	if sal.ID == "" {
		sal.ID = newID()
	}
	sal.CreatedAt = r.s.now()
	stored := *sal
	stored.Structure = nil
	r.s.d.salaries[sal.ID] = stored
	return nil
}

type payrollRunRepository struct {
	s *Store
}

func NewPayrollRunRepository(s *Store) payroll.PayrollRunRepository {
	return &payrollRunRepository{s: s}
}

func (r *payrollRunRepository) Create(ctx context.Context, run *payroll.PayrollRun) error {
	defer r.s.lock(ctx)()

	for _, existing := range r.s.d.runs {
		if existing.CompanyID == run.CompanyID && existing.Month == run.Month && existing.Year == run.Year {
			return payroll.ErrPayrollRunExists
		}
	}
	if run.ID == "" {
		run.ID = newID()
	}
	now := r.s.now()
	run.CreatedAt, run.UpdatedAt = now, now
	r.s.d.runs[run.ID] = *run
	return nil
}

func (r *payrollRunRepository) GetByID(ctx context.Context, companyID, id string) (*payroll.PayrollRun, error) {
	defer r.s.rlock(ctx)()

	run, ok := r.s.d.runs[id]
	if !ok || run.CompanyID != companyID {
		return nil, payroll.ErrPayrollRunNotFound
	}
	return &run, nil
}

func (r *payrollRunRepository) Transition(ctx context.Context, companyID, id string, from, to payroll.RunStatus, at time.Time, actorID *string) error {
	defer r.s.lock(ctx)()

	run, ok := r.s.d.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.ErrPayrollRunNotFound
	}
	if run.Status != from {
		return payroll.ErrInvalidRunState
	}

	run.Status = to
	switch to {
	case payroll.RunStatusApproved:
		run.ApprovedAt = &at
		run.ApprovedBy = actorID
	case payroll.RunStatusPaid:
		run.PaidAt = &at
	}
	run.UpdatedAt = at
	r.s.d.runs[id] = run
	return nil
}

func (r *payrollRunRepository) Complete(ctx context.Context, companyID, id string, totals payroll.RunTotals, at time.Time) error {
	defer r.s.lock(ctx)()

	run, ok := r.s.d.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.ErrPayrollRunNotFound
	}
	if run.Status != payroll.RunStatusProcessing {
		return payroll.ErrInvalidRunState
	}
	run.Status = payroll.RunStatusComputed
	run.TotalGross = totals.TotalGross
	run.TotalDeductions = totals.TotalDeductions
	run.TotalNet = totals.TotalNet
	run.ProcessedCount = totals.ProcessedCount
	run.ComputedAt = &at
	run.UpdatedAt = at
	r.s.d.runs[id] = run
	return nil
}

func (r *payrollRunRepository) Delete(ctx context.Context, companyID, id string) error {
	defer r.s.lock(ctx)()

	run, ok := r.s.d.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.ErrPayrollRunNotFound
	}
	if run.Status != payroll.RunStatusDraft {
		return payroll.ErrInvalidRunState
	}
	delete(r.s.d.runs, id)
	for pid, p := range r.s.d.payslips {
		if p.RunID == id {
			delete(r.s.d.payslips, pid)
		}
	}
	return nil
}

type payslipRepository struct {
	s *Store
}

func NewPayslipRepository(s *Store) payroll.PayslipRepository {
	return &payslipRepository{s: s}
}

func (r *payslipRepository) Create(ctx context.Context, p *payroll.Payslip) error {
	defer r.s.lock(ctx)()

	for _, existing := range r.s.d.payslips {
		if existing.RunID == p.RunID && existing.EmployeeID == p.EmployeeID {
			return payroll.ErrPayrollRunExists
		}
	}
	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = r.s.now()
	r.s.d.payslips[p.ID] = *p
	return nil
}

func (r *payslipRepository) DeleteByRun(ctx context.Context, runID string) error {
	defer r.s.lock(ctx)()

	for id, p := range r.s.d.payslips {
		if p.RunID == runID {
			delete(r.s.d.payslips, id)
		}
	}
	return nil
}

// joinLocked expects the caller to hold s.mu.
func (r *payslipRepository) joinLocked(p payroll.Payslip) payroll.Payslip {
	if e, ok := r.s.d.employees[p.EmployeeID]; ok {
		p.EmployeeName = e.FullName
		p.EmployeeCode = e.EmployeeCode
	}
	if run, ok := r.s.d.runs[p.RunID]; ok {
		p.RunStatus = run.Status
	}
	return p
}

func (r *payslipRepository) ListByRun(ctx context.Context, companyID, runID string) ([]payroll.Payslip, error) {
	defer r.s.rlock(ctx)()

	var out []payroll.Payslip
	for _, p := range r.s.d.payslips {
		if p.CompanyID == companyID && p.RunID == runID {
			out = append(out, r.joinLocked(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func (r *payslipRepository) ListReleasedByEmployee(ctx context.Context, companyID, employeeID string) ([]payroll.Payslip, error) {
	defer r.s.rlock(ctx)()

	var out []payroll.Payslip
	for _, p := range r.s.d.payslips {
		if p.CompanyID != companyID || p.EmployeeID != employeeID {
			continue
		}
		run, ok := r.s.d.runs[p.RunID]
		if !ok || !run.IsReleased() {
			continue
		}
		out = append(out, r.joinLocked(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}
