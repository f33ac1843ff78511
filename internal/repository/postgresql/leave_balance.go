package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const leaveBalanceSelect = `
	SELECT lb.id, lb.company_id, lb.employee_id, lb.leave_type_id, lb.year,
		   lb.total_days, lb.used_days, lb.pending_days, lb.carried_over,
		   lb.created_at, lb.updated_at,
		   lt.code, lt.name
	FROM leave_balances lb
	JOIN leave_types lt ON lt.id = lb.leave_type_id
`

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

func scanLeaveBalance(row pgx.Row) (*leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.TotalDays, &b.UsedDays, &b.PendingDays, &b.CarriedOver,
		&b.CreatedAt, &b.UpdatedAt,
		&b.LeaveTypeCode, &b.LeaveTypeName,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Get implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	return r.get(ctx, companyID, employeeID, leaveTypeID, year, false)
}

// GetForUpdate implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetForUpdate(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	return r.get(ctx, companyID, employeeID, leaveTypeID, year, true)
}

func (r *leaveBalanceRepositoryImpl) get(ctx context.Context, companyID, employeeID, leaveTypeID string, year int, forUpdate bool) (*leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveBalanceSelect + `
		WHERE lb.company_id = $1 AND lb.employee_id = $2 AND lb.leave_type_id = $3 AND lb.year = $4
	`
	if forUpdate {
		query += ` FOR UPDATE OF lb`
	}

	b, err := scanLeaveBalance(q.QueryRow(ctx, query, companyID, employeeID, leaveTypeID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return b, nil
}

// GetOrCreateForUpdate implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetOrCreateForUpdate(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO leave_balances (id, company_id, employee_id, leave_type_id, year)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT uq_leave_balances DO NOTHING
	`, newID(), companyID, employeeID, leaveTypeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure leave balance: %w", err)
	}

	query := leaveBalanceSelect + `
		WHERE lb.company_id = $1 AND lb.employee_id = $2 AND lb.leave_type_id = $3 AND lb.year = $4
		FOR UPDATE OF lb
	`
	b, err := scanLeaveBalance(q.QueryRow(ctx, query, companyID, employeeID, leaveTypeID, year))
	if err != nil {
		return nil, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	return b, nil
}

// ListByEmployeeYear implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByEmployeeYear(ctx context.Context, companyID, employeeID string, year int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveBalanceSelect + `
		WHERE lb.company_id = $1 AND lb.employee_id = $2 AND lb.year = $3
		ORDER BY lt.name
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	balances := make([]leave.LeaveBalance, 0)
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	return balances, rows.Err()
}

// adjust runs a single-statement counter update so concurrent requests never
// lose an increment.
func (r *leaveBalanceRepositoryImpl) adjust(ctx context.Context, set string, balanceID string, days decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE leave_balances SET `+set+`, updated_at = NOW() WHERE id = $1`, balanceID, days)
	if err != nil {
		return fmt.Errorf("failed to update leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrBalanceNotFound
	}
	return nil
}

// AddPending implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) AddPending(ctx context.Context, balanceID string, days decimal.Decimal) error {
	return r.adjust(ctx, `pending_days = pending_days + $2`, balanceID, days)
}

// RemovePending implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) RemovePending(ctx context.Context, balanceID string, days decimal.Decimal) error {
	return r.adjust(ctx, `pending_days = GREATEST(pending_days - $2, 0)`, balanceID, days)
}

// MovePendingToUsed implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) MovePendingToUsed(ctx context.Context, balanceID string, days decimal.Decimal) error {
	return r.adjust(ctx, `pending_days = GREATEST(pending_days - $2, 0), used_days = used_days + $2`, balanceID, days)
}

// AddTotal implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) AddTotal(ctx context.Context, balanceID string, days decimal.Decimal) (*leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	var b leave.LeaveBalance
	err := q.QueryRow(ctx, `
		UPDATE leave_balances SET total_days = total_days + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, company_id, employee_id, leave_type_id, year,
				  total_days, used_days, pending_days, carried_over, created_at, updated_at
	`, balanceID, days).Scan(
		&b.ID, &b.CompanyID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.TotalDays, &b.UsedDays, &b.PendingDays, &b.CarriedOver, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, leave.ErrBalanceNotFound
		}
		return nil, fmt.Errorf("failed to add leave days: %w", err)
	}
	return &b, nil
}
