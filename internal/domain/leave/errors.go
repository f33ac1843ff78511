package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrLeaveTypeNotFound            = errors.New("leave type not found or inactive")
	ErrLeaveOverlap                 = errors.New("leave request overlaps an existing request")
	ErrInsufficientBalance          = errors.New("insufficient leave balance")
	ErrInvalidDateRange             = errors.New("start date must not be after end date")
	ErrNoWorkingDays                = errors.New("leave range contains no working days")
	ErrNotRequestOwner              = errors.New("only the requesting employee can cancel this request")
	ErrAccrualAlreadyCompleted      = errors.New("accrual run already completed for this period")
	ErrAccrualRunNotFound           = errors.New("accrual run not found")
	ErrBalanceNotFound              = errors.New("leave balance not found")
)

// InsufficientBalanceError carries the figures behind a rejected request.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: requested %s day(s), available %s", ErrInsufficientBalance.Error(), e.Requested.String(), e.Available.String())
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
