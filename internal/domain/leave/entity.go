package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// CodeLOP marks the loss-of-pay leave type, which is exempt from balance checks.
const CodeLOP = "LOP"

type CarryForwardPolicy string

const (
	CarryForwardNone      CarryForwardPolicy = "NONE"
	CarryForwardLimited   CarryForwardPolicy = "LIMITED"
	CarryForwardUnlimited CarryForwardPolicy = "UNLIMITED"
)

type LeaveType struct {
	ID                  string
	CompanyID           string
	Code                string
	Name                string
	IsPaid              bool
	IsActive            bool
	CarryForwardPolicy  CarryForwardPolicy
	MaxCarryForwardDays *decimal.Decimal
	DefaultDays         decimal.Decimal
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (t LeaveType) IsLOP() bool {
	return t.Code == CodeLOP
}

// LeaveBalance is unique per (company, employee, leave type, year).
type LeaveBalance struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	LeaveTypeID string
	Year        int
	TotalDays   decimal.Decimal
	UsedDays    decimal.Decimal
	PendingDays decimal.Decimal
	CarriedOver decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join
	LeaveTypeCode string
	LeaveTypeName string
}

// Available is total + carried over - used - pending.
func (b LeaveBalance) Available() decimal.Decimal {
	return b.TotalDays.Add(b.CarriedOver).Sub(b.UsedDays).Sub(b.PendingDays)
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

type LeaveRequest struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	LeaveTypeID     string
	StartDate       time.Time
	EndDate         time.Time
	TotalDays       decimal.Decimal
	Reason          *string
	Status          RequestStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Join, populated by ListApprovedOverlapping
	LeaveTypeIsPaid bool
}

// BalanceYear is the balance year a request draws from.
func (r LeaveRequest) BalanceYear() int {
	return r.StartDate.Year()
}

type AccrualRule struct {
	ID                 string
	CompanyID          string
	LeaveTypeID        string
	MonthlyAccrualDays decimal.Decimal
	MaxBalanceCap      *decimal.Decimal
	ApplyCapOnAccrual  bool
	IsActive           bool
	CreatedAt          time.Time

	// Join
	LeaveTypeCode string
}

// AccrualFor returns the days to credit on top of balanceBefore and whether
// the cap reduced them.
func (r AccrualRule) AccrualFor(balanceBefore decimal.Decimal) (decimal.Decimal, bool) {
	days := r.MonthlyAccrualDays
	if !r.ApplyCapOnAccrual || r.MaxBalanceCap == nil {
		return days, false
	}
	if balanceBefore.Add(days).GreaterThan(*r.MaxBalanceCap) {
		capped := r.MaxBalanceCap.Sub(balanceBefore)
		if capped.IsNegative() {
			capped = decimal.Zero
		}
		return capped, true
	}
	return days, false
}

type AccrualRunStatus string

const (
	AccrualRunPending   AccrualRunStatus = "PENDING"
	AccrualRunCompleted AccrualRunStatus = "COMPLETED"
	AccrualRunFailed    AccrualRunStatus = "FAILED"
)

type TriggerType string

const (
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerManual    TriggerType = "MANUAL"
)

// AccrualRun is unique per (company, month, year).
type AccrualRun struct {
	ID             string
	CompanyID      string
	Month          int
	Year           int
	FiscalYear     int
	Status         AccrualRunStatus
	TriggerType    TriggerType
	TriggeredBy    *string
	ProcessedCount int
	FailedCount    int
	ErrorMessage   *string
	StartedAt      time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

type AccrualEntry struct {
	ID            string
	RunID         string
	CompanyID     string
	EmployeeID    string
	LeaveTypeID   string
	AccrualRuleID string
	BalanceBefore decimal.Decimal
	AccrualDays   decimal.Decimal
	BalanceAfter  decimal.Decimal
	CapApplied    bool
	CreatedAt     time.Time
}

// FiscalYear maps a calendar month onto the April to March fiscal year.
func FiscalYear(month, year int) int {
	if month >= 4 {
		return year
	}
	return year - 1
}
