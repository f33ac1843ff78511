package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// ========== SALARY STRUCTURES ==========

type salaryStructureRepository struct {
	db *database.DB
}

func NewSalaryStructureRepository(db *database.DB) payroll.SalaryStructureRepository {
	return &salaryStructureRepository{db: db}
}

func (r *salaryStructureRepository) Create(ctx context.Context, s *payroll.SalaryStructure) error {
	q := GetQuerier(ctx, r.db)

	if s.ID == "" {
		s.ID = newID()
	}
	componentsJSON, err := json.Marshal(s.Components)
	if err != nil {
		return fmt.Errorf("failed to marshal salary components: %w", err)
	}

	err = q.QueryRow(ctx, `
		INSERT INTO salary_structures (id, company_id, name, components, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, s.ID, s.CompanyID, s.Name, componentsJSON, s.IsActive).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create salary structure: %w", err)
	}
	return nil
}

func (r *salaryStructureRepository) GetByID(ctx context.Context, companyID, id string) (*payroll.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	var s payroll.SalaryStructure
	var componentsJSON []byte
	err := q.QueryRow(ctx, `
		SELECT id, company_id, name, components, is_active, created_at, updated_at
		FROM salary_structures
		WHERE id = $1 AND company_id = $2
	`, id, companyID).Scan(&s.ID, &s.CompanyID, &s.Name, &componentsJSON, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrSalaryStructureMissing
		}
		return nil, fmt.Errorf("failed to get salary structure: %w", err)
	}
	if err := json.Unmarshal(componentsJSON, &s.Components); err != nil {
		return nil, fmt.Errorf("failed to unmarshal salary components: %w", err)
	}
	return &s, nil
}

// ========== EMPLOYEE SALARIES ==========

type employeeSalaryRepository struct {
	db *database.DB
}

func NewEmployeeSalaryRepository(db *database.DB) payroll.EmployeeSalaryRepository {
	return &employeeSalaryRepository{db: db}
}

// GetEffective joins the structure so payroll needs no second round trip.
func (r *employeeSalaryRepository) GetEffective(ctx context.Context, companyID, employeeID string, from, to time.Time) (*payroll.EmployeeSalary, error) {
	q := GetQuerier(ctx, r.db)

	var es payroll.EmployeeSalary
	var st payroll.SalaryStructure
	var componentsJSON []byte
	err := q.QueryRow(ctx, `
		SELECT es.id, es.company_id, es.employee_id, es.structure_id, es.base_pay,
			   es.effective_from, es.effective_to, es.created_at,
			   ss.id, ss.company_id, ss.name, ss.components, ss.is_active, ss.created_at, ss.updated_at
		FROM employee_salaries es
		JOIN salary_structures ss ON ss.id = es.structure_id
		WHERE es.company_id = $1 AND es.employee_id = $2
		  AND es.effective_from <= $4
		  AND (es.effective_to IS NULL OR es.effective_to >= $3)
		ORDER BY es.effective_from DESC
		LIMIT 1
	`, companyID, employeeID, from, to).Scan(
		&es.ID, &es.CompanyID, &es.EmployeeID, &es.StructureID, &es.BasePay,
		&es.EffectiveFrom, &es.EffectiveTo, &es.CreatedAt,
		&st.ID, &st.CompanyID, &st.Name, &componentsJSON, &st.IsActive, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get effective salary: %w", err)
	}
	if err := json.Unmarshal(componentsJSON, &st.Components); err != nil {
		return nil, fmt.Errorf("failed to unmarshal salary components: %w", err)
	}
	es.Structure = &st
	return &es, nil
}

func (r *employeeSalaryRepository) GetOpen(ctx context.Context, companyID, employeeID string) (*payroll.EmployeeSalary, error) {
	q := GetQuerier(ctx, r.db)

	var es payroll.EmployeeSalary
	err := q.QueryRow(ctx, `
		SELECT id, company_id, employee_id, structure_id, base_pay, effective_from, effective_to, created_at
		FROM employee_salaries
		WHERE company_id = $1 AND employee_id = $2 AND effective_to IS NULL
		FOR UPDATE
	`, companyID, employeeID).Scan(
		&es.ID, &es.CompanyID, &es.EmployeeID, &es.StructureID, &es.BasePay, &es.EffectiveFrom, &es.EffectiveTo, &es.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open salary: %w", err)
	}
	return &es, nil
}

func (r *employeeSalaryRepository) Close(ctx context.Context, id string, effectiveTo time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE employee_salaries SET effective_to = $2 WHERE id = $1`, id, effectiveTo)
	if err != nil {
		return fmt.Errorf("failed to close salary: %w", err)
	}
	return nil
}

func (r *employeeSalaryRepository) Create(ctx context.Context, s *payroll.EmployeeSalary) error {
	q := GetQuerier(ctx, r.db)

	if s.ID == "" {
		s.ID = newID()
	}

	err := q.QueryRow(ctx, `
		INSERT INTO employee_salaries (id, company_id, employee_id, structure_id, base_pay, effective_from, effective_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, s.ID, s.CompanyID, s.EmployeeID, s.StructureID, s.BasePay, s.EffectiveFrom, s.EffectiveTo).Scan(&s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return payroll.ErrSalaryOverlap
		}
		return fmt.Errorf("failed to create salary: %w", err)
	}
	return nil
}

// ========== PAYROLL RUNS ==========

const payrollRunColumns = `
	id, company_id, month, year, status, total_gross, total_deductions, total_net, processed_count,
	created_by, computed_at, approved_at, approved_by, paid_at, created_at, updated_at
`

type payrollRunRepository struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.PayrollRunRepository {
	return &payrollRunRepository{db: db}
}

func (r *payrollRunRepository) Create(ctx context.Context, run *payroll.PayrollRun) error {
	q := GetQuerier(ctx, r.db)

	if run.ID == "" {
		run.ID = newID()
	}

	err := q.QueryRow(ctx, `
		INSERT INTO payroll_runs (id, company_id, month, year, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, run.ID, run.CompanyID, run.Month, run.Year, run.Status, run.CreatedBy).Scan(&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return payroll.ErrPayrollRunExists
		}
		return fmt.Errorf("failed to create payroll run: %w", err)
	}
	return nil
}

func (r *payrollRunRepository) GetByID(ctx context.Context, companyID, id string) (*payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	var run payroll.PayrollRun
	err := q.QueryRow(ctx, `SELECT `+payrollRunColumns+` FROM payroll_runs WHERE id = $1 AND company_id = $2`, id, companyID).Scan(
		&run.ID, &run.CompanyID, &run.Month, &run.Year, &run.Status,
		&run.TotalGross, &run.TotalDeductions, &run.TotalNet, &run.ProcessedCount,
		&run.CreatedBy, &run.ComputedAt, &run.ApprovedAt, &run.ApprovedBy, &run.PaidAt,
		&run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrPayrollRunNotFound
		}
		return nil, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return &run, nil
}

// stateError tells a missing run apart from one in the wrong status after a
// conditional update matched nothing.
func (r *payrollRunRepository) stateError(ctx context.Context, companyID, id string) error {
	if _, err := r.GetByID(ctx, companyID, id); err != nil {
		return err
	}
	return payroll.ErrInvalidRunState
}

func (r *payrollRunRepository) Transition(ctx context.Context, companyID, id string, from, to payroll.RunStatus, at time.Time, actorID *string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_runs SET
			status = $4,
			approved_at = CASE WHEN $4 = 'APPROVED' THEN $5 ELSE approved_at END,
			approved_by = CASE WHEN $4 = 'APPROVED' THEN $6 ELSE approved_by END,
			paid_at = CASE WHEN $4 = 'PAID' THEN $5 ELSE paid_at END,
			updated_at = $5
		WHERE id = $1 AND company_id = $2 AND status = $3
	`, id, companyID, from, to, at, actorID)
	if err != nil {
		return fmt.Errorf("failed to transition payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.stateError(ctx, companyID, id)
	}
	return nil
}

func (r *payrollRunRepository) Complete(ctx context.Context, companyID, id string, totals payroll.RunTotals, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_runs SET
			status = $3, total_gross = $4, total_deductions = $5, total_net = $6,
			processed_count = $7, computed_at = $8, updated_at = $8
		WHERE id = $1 AND company_id = $2 AND status = $9
	`, id, companyID, payroll.RunStatusComputed,
		totals.TotalGross, totals.TotalDeductions, totals.TotalNet, totals.ProcessedCount, at,
		payroll.RunStatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to complete payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.stateError(ctx, companyID, id)
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for payslips.
func (r *payrollRunRepository) Delete(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_runs WHERE id = $1 AND company_id = $2 AND status = $3`,
		id, companyID, payroll.RunStatusDraft)
	if err != nil {
		return fmt.Errorf("failed to delete payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.stateError(ctx, companyID, id)
	}
	return nil
}

// ========== PAYSLIPS ==========

const payslipSelect = `
	SELECT p.id, p.run_id, p.company_id, p.employee_id, p.month, p.year,
		   p.working_days, p.present_days, p.leave_days, p.lop_days, p.ot_hours,
		   p.base_pay, p.earnings, p.deductions, p.gross_pay, p.total_deductions, p.net_pay, p.ot_pay,
		   p.created_at, e.full_name, e.employee_code, pr.status
	FROM payslips p
	JOIN employees e ON e.id = p.employee_id
	JOIN payroll_runs pr ON pr.id = p.run_id
`

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepository{db: db}
}

func (r *payslipRepository) Create(ctx context.Context, p *payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	if p.ID == "" {
		p.ID = newID()
	}
	earningsJSON, err := json.Marshal(p.Earnings)
	if err != nil {
		return fmt.Errorf("failed to encode payslip earnings: %w", err)
	}
	deductionsJSON, err := json.Marshal(p.Deductions)
	if err != nil {
		return fmt.Errorf("failed to encode payslip deductions: %w", err)
	}

	err = q.QueryRow(ctx, `
		INSERT INTO payslips (
			id, run_id, company_id, employee_id, month, year,
			working_days, present_days, leave_days, lop_days, ot_hours,
			base_pay, earnings, deductions, gross_pay, total_deductions, net_pay, ot_pay
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at
	`,
		p.ID, p.RunID, p.CompanyID, p.EmployeeID, p.Month, p.Year,
		p.WorkingDays, p.PresentDays, p.LeaveDays, p.LopDays, p.OTHours,
		p.BasePay, earningsJSON, deductionsJSON, p.GrossPay, p.TotalDeductions, p.NetPay, p.OTPay,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payslip: %w", err)
	}
	return nil
}

func (r *payslipRepository) DeleteByRun(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payslips WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to delete payslips: %w", err)
	}
	return nil
}

func (r *payslipRepository) list(ctx context.Context, query string, args ...interface{}) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	payslips := make([]payroll.Payslip, 0)
	for rows.Next() {
		var p payroll.Payslip
		var earningsBytes, deductionsBytes []byte
		if err := rows.Scan(
			&p.ID, &p.RunID, &p.CompanyID, &p.EmployeeID, &p.Month, &p.Year,
			&p.WorkingDays, &p.PresentDays, &p.LeaveDays, &p.LopDays, &p.OTHours,
			&p.BasePay, &earningsBytes, &deductionsBytes, &p.GrossPay, &p.TotalDeductions, &p.NetPay, &p.OTPay,
			&p.CreatedAt, &p.EmployeeName, &p.EmployeeCode, &p.RunStatus,
		); err != nil {
			return nil, err
		}
		if err := decodePayslipLines(&p, earningsBytes, deductionsBytes); err != nil {
			return nil, err
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}

func decodePayslipLines(p *payroll.Payslip, earnings, deductions []byte) error {
	if err := json.Unmarshal(earnings, &p.Earnings); err != nil {
		return fmt.Errorf("failed to decode earnings of payslip %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(deductions, &p.Deductions); err != nil {
		return fmt.Errorf("failed to decode deductions of payslip %s: %w", p.ID, err)
	}
	return nil
}

func (r *payslipRepository) ListByRun(ctx context.Context, companyID, runID string) ([]payroll.Payslip, error) {
	return r.list(ctx, payslipSelect+`
		WHERE p.company_id = $1 AND p.run_id = $2
		ORDER BY e.employee_code
	`, companyID, runID)
}

func (r *payslipRepository) ListReleasedByEmployee(ctx context.Context, companyID, employeeID string) ([]payroll.Payslip, error) {
	return r.list(ctx, payslipSelect+`
		WHERE p.company_id = $1 AND p.employee_id = $2 AND pr.status IN ($3, $4)
		ORDER BY p.year DESC, p.month DESC
	`, companyID, employeeID, payroll.RunStatusApproved, payroll.RunStatusPaid)
}
