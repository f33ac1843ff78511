package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
)

type LeaveService interface {
	CreateRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	// ApproveRequest moves the days from pending to used and marks the
	// weekdays of the range as LEAVE in attendance.
	ApproveRequest(ctx context.Context, companyID, requestID string, approver user.Actor) (LeaveRequestResponse, error)
	RejectRequest(ctx context.Context, companyID, requestID string, approver user.Actor, reason string) (LeaveRequestResponse, error)
	// CancelRequest withdraws the employee's own PENDING request.
	CancelRequest(ctx context.Context, companyID, requestID, employeeID string) (LeaveRequestResponse, error)

	GetBalances(ctx context.Context, companyID, employeeID string, year int) ([]BalanceResponse, error)

	// TriggerAccrual credits one month of accrual. A completed run for the same
	// period is rejected with ErrAccrualAlreadyCompleted.
	TriggerAccrual(ctx context.Context, companyID string, req TriggerAccrualRequest, trigger TriggerType, triggeredBy *string) (AccrualRunResponse, error)
	GetAccrualRun(ctx context.Context, companyID, runID string) (AccrualRunResponse, error)
}
