package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type LeaveTypeRepository interface {
	// GetByID returns ErrLeaveTypeNotFound for unknown ids.
	GetByID(ctx context.Context, companyID, id string) (LeaveType, error)
}

// LeaveBalanceRepository mutates day counters with single atomic statements,
// never read-modify-write.
type LeaveBalanceRepository interface {
	// Get returns nil, nil when no balance row exists.
	Get(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	// GetForUpdate is Get holding a row lock for the surrounding transaction.
	GetForUpdate(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	// GetOrCreateForUpdate finds or inserts the zero balance and locks it for
	// the surrounding transaction.
	GetOrCreateForUpdate(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	ListByEmployeeYear(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalance, error)

	AddPending(ctx context.Context, balanceID string, days decimal.Decimal) error
	RemovePending(ctx context.Context, balanceID string, days decimal.Decimal) error
	MovePendingToUsed(ctx context.Context, balanceID string, days decimal.Decimal) error
	// AddTotal returns the balance after the increment.
	AddTotal(ctx context.Context, balanceID string, days decimal.Decimal) (*LeaveBalance, error)
}

type LeaveRequestRepository interface {
	Create(ctx context.Context, req *LeaveRequest) error
	// GetByID returns ErrLeaveRequestNotFound.
	GetByID(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	// LockByID is GetByID holding a row lock for the surrounding transaction.
	LockByID(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	UpdateStatus(ctx context.Context, req *LeaveRequest) error
	// LockEmployee serializes request creation for one employee until the
	// surrounding transaction ends.
	LockEmployee(ctx context.Context, companyID, employeeID string) error
	// HasOverlap checks PENDING and APPROVED requests of the employee.
	HasOverlap(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error)
	// ListApprovedOverlapping returns APPROVED requests intersecting [from, to]
	// with LeaveTypeIsPaid populated.
	ListApprovedOverlapping(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]LeaveRequest, error)
}

type AccrualRuleRepository interface {
	// ListActive returns active rules of active leave types. A non-empty
	// leaveTypeIDs filter restricts the result.
	ListActive(ctx context.Context, companyID string, leaveTypeIDs []string) ([]AccrualRule, error)
}

type AccrualRunRepository interface {
	// GetByPeriod returns nil, nil when no run exists.
	GetByPeriod(ctx context.Context, companyID string, month, year int) (*AccrualRun, error)
	GetByID(ctx context.Context, companyID, id string) (*AccrualRun, error)
	Create(ctx context.Context, run *AccrualRun) error
	Update(ctx context.Context, run *AccrualRun) error
	CreateEntry(ctx context.Context, entry *AccrualEntry) error
	ListEntries(ctx context.Context, runID string) ([]AccrualEntry, error)
}
