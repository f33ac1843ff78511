package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestSelect = `
	SELECT lr.id, lr.company_id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date,
		   lr.total_days, lr.reason, lr.status, lr.approved_by, lr.approved_at,
		   lr.rejection_reason, lr.cancelled_at, lr.created_at, lr.updated_at,
		   lt.is_paid
	FROM leave_requests lr
	JOIN leave_types lt ON lt.id = lr.leave_type_id
`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (*leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.CompanyID, &lr.EmployeeID, &lr.LeaveTypeID, &lr.StartDate, &lr.EndDate,
		&lr.TotalDays, &lr.Reason, &lr.Status, &lr.ApprovedBy, &lr.ApprovedAt,
		&lr.RejectionReason, &lr.CancelledAt, &lr.CreatedAt, &lr.UpdatedAt,
		&lr.LeaveTypeIsPaid,
	)
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req *leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		req.ID = newID()
	}

	query := `
		INSERT INTO leave_requests (
			id, company_id, employee_id, leave_type_id, start_date, end_date, total_days, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID, req.CompanyID, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate,
		req.TotalDays, req.Reason, req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) get(ctx context.Context, companyID, id string, forUpdate bool) (*leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveRequestSelect + ` WHERE lr.id = $1 AND lr.company_id = $2`
	if forUpdate {
		query += ` FOR UPDATE OF lr`
	}

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, leave.ErrLeaveRequestNotFound
		}
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	return r.get(ctx, companyID, id, false)
}

// LockByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) LockByID(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	return r.get(ctx, companyID, id, true)
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, req *leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			status = $3, approved_by = $4, approved_at = $5,
			rejection_reason = $6, cancelled_at = $7, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID, req.CompanyID,
		req.Status, req.ApprovedBy, req.ApprovedAt,
		req.RejectionReason, req.CancelledAt,
	).Scan(&req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.ErrLeaveRequestNotFound
		}
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	return nil
}

// LockEmployee implements leave.LeaveRequestRepository with a transaction
// scoped advisory lock, which also covers employees with no balance row yet.
func (r *leaveRequestRepositoryImpl) LockEmployee(ctx context.Context, companyID, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "leave_request:"+companyID+":"+employeeID)
	if err != nil {
		return fmt.Errorf("failed to lock employee leave requests: %w", err)
	}
	return nil
}

// HasOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE company_id = $1 AND employee_id = $2
			  AND status IN ($3, $4)
			  AND start_date <= $6 AND end_date >= $5
		)
	`, companyID, employeeID, leave.RequestStatusPending, leave.RequestStatusApproved, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check leave overlap: %w", err)
	}
	return exists, nil
}

// ListApprovedOverlapping implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedOverlapping(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveRequestSelect + `
		WHERE lr.company_id = $1 AND lr.employee_id = $2 AND lr.status = $3
		  AND lr.start_date <= $5 AND lr.end_date >= $4
		ORDER BY lr.start_date
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, leave.RequestStatusApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *lr)
	}
	return requests, rows.Err()
}
