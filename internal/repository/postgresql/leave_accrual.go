package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type accrualRuleRepositoryImpl struct {
	db *database.DB
}

func NewAccrualRuleRepository(db *database.DB) leave.AccrualRuleRepository {
	return &accrualRuleRepositoryImpl{db: db}
}

// ListActive implements leave.AccrualRuleRepository.
func (r *accrualRuleRepositoryImpl) ListActive(ctx context.Context, companyID string, leaveTypeIDs []string) ([]leave.AccrualRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ar.id, ar.company_id, ar.leave_type_id, ar.monthly_accrual_days, ar.max_balance_cap,
			   ar.apply_cap_on_accrual, ar.is_active, ar.created_at, lt.code
		FROM leave_accrual_rules ar
		JOIN leave_types lt ON lt.id = ar.leave_type_id
		WHERE ar.company_id = $1 AND ar.is_active AND lt.is_active
	`
	args := []interface{}{companyID}
	if len(leaveTypeIDs) > 0 {
		query += ` AND ar.leave_type_id = ANY($2)`
		args = append(args, leaveTypeIDs)
	}
	query += ` ORDER BY ar.id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accrual rules: %w", err)
	}
	defer rows.Close()

	rules := make([]leave.AccrualRule, 0)
	for rows.Next() {
		var rule leave.AccrualRule
		if err := rows.Scan(
			&rule.ID, &rule.CompanyID, &rule.LeaveTypeID, &rule.MonthlyAccrualDays, &rule.MaxBalanceCap,
			&rule.ApplyCapOnAccrual, &rule.IsActive, &rule.CreatedAt, &rule.LeaveTypeCode,
		); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

const accrualRunColumns = `
	id, company_id, month, year, fiscal_year, status, trigger_type, triggered_by,
	processed_count, failed_count, error_message, started_at, completed_at, created_at
`

type accrualRunRepositoryImpl struct {
	db *database.DB
}

func NewAccrualRunRepository(db *database.DB) leave.AccrualRunRepository {
	return &accrualRunRepositoryImpl{db: db}
}

func scanAccrualRun(row pgx.Row) (*leave.AccrualRun, error) {
	var run leave.AccrualRun
	err := row.Scan(
		&run.ID, &run.CompanyID, &run.Month, &run.Year, &run.FiscalYear, &run.Status, &run.TriggerType, &run.TriggeredBy,
		&run.ProcessedCount, &run.FailedCount, &run.ErrorMessage, &run.StartedAt, &run.CompletedAt, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetByPeriod implements leave.AccrualRunRepository.
func (r *accrualRunRepositoryImpl) GetByPeriod(ctx context.Context, companyID string, month, year int) (*leave.AccrualRun, error) {
	q := GetQuerier(ctx, r.db)

	run, err := scanAccrualRun(q.QueryRow(ctx, `SELECT `+accrualRunColumns+` FROM leave_accrual_runs
		WHERE company_id = $1 AND month = $2 AND year = $3`, companyID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get accrual run: %w", err)
	}
	return run, nil
}

// GetByID implements leave.AccrualRunRepository.
func (r *accrualRunRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (*leave.AccrualRun, error) {
	q := GetQuerier(ctx, r.db)

	run, err := scanAccrualRun(q.QueryRow(ctx, `SELECT `+accrualRunColumns+` FROM leave_accrual_runs
		WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, leave.ErrAccrualRunNotFound
		}
		return nil, fmt.Errorf("failed to get accrual run: %w", err)
	}
	return run, nil
}

// Create implements leave.AccrualRunRepository.
func (r *accrualRunRepositoryImpl) Create(ctx context.Context, run *leave.AccrualRun) error {
	q := GetQuerier(ctx, r.db)

	if run.ID == "" {
		run.ID = newID()
	}

	err := q.QueryRow(ctx, `
		INSERT INTO leave_accrual_runs (
			id, company_id, month, year, fiscal_year, status, trigger_type, triggered_by,
			processed_count, failed_count, error_message, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`,
		run.ID, run.CompanyID, run.Month, run.Year, run.FiscalYear, run.Status, run.TriggerType, run.TriggeredBy,
		run.ProcessedCount, run.FailedCount, run.ErrorMessage, run.StartedAt, run.CompletedAt,
	).Scan(&run.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return leave.ErrAccrualAlreadyCompleted
		}
		return fmt.Errorf("failed to create accrual run: %w", err)
	}
	return nil
}

// Update implements leave.AccrualRunRepository.
func (r *accrualRunRepositoryImpl) Update(ctx context.Context, run *leave.AccrualRun) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_accrual_runs SET
			status = $2, trigger_type = $3, triggered_by = $4,
			processed_count = $5, failed_count = $6, error_message = $7,
			started_at = $8, completed_at = $9
		WHERE id = $1
	`,
		run.ID, run.Status, run.TriggerType, run.TriggeredBy,
		run.ProcessedCount, run.FailedCount, run.ErrorMessage,
		run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update accrual run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrAccrualRunNotFound
	}
	return nil
}

// CreateEntry implements leave.AccrualRunRepository.
func (r *accrualRunRepositoryImpl) CreateEntry(ctx context.Context, entry *leave.AccrualEntry) error {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = newID()
	}

	err := q.QueryRow(ctx, `
		INSERT INTO leave_accrual_entries (
			id, run_id, company_id, employee_id, leave_type_id, accrual_rule_id,
			balance_before, accrual_days, balance_after, cap_applied
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`,
		entry.ID, entry.RunID, entry.CompanyID, entry.EmployeeID, entry.LeaveTypeID, entry.AccrualRuleID,
		entry.BalanceBefore, entry.AccrualDays, entry.BalanceAfter, entry.CapApplied,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create accrual entry: %w", err)
	}
	return nil
}

// ListEntries implements leave.AccrualRunRepository.
func (r *accrualRunRepositoryImpl) ListEntries(ctx context.Context, runID string) ([]leave.AccrualEntry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, run_id, company_id, employee_id, leave_type_id, accrual_rule_id,
			   balance_before, accrual_days, balance_after, cap_applied, created_at
		FROM leave_accrual_entries
		WHERE run_id = $1
		ORDER BY created_at, id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accrual entries: %w", err)
	}
	defer rows.Close()

	entries := make([]leave.AccrualEntry, 0)
	for rows.Next() {
		var e leave.AccrualEntry
		if err := rows.Scan(
			&e.ID, &e.RunID, &e.CompanyID, &e.EmployeeID, &e.LeaveTypeID, &e.AccrualRuleID,
			&e.BalanceBefore, &e.AccrualDays, &e.BalanceAfter, &e.CapApplied, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
