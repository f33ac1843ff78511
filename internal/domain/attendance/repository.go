package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// GetByEmployeeAndDate returns nil, nil when the employee has no record for
	// the date. Sessions are loaded in start order.
	GetByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*AttendanceRecord, error)

	// LockByEmployeeAndDate behaves like GetByEmployeeAndDate but holds a row
	// lock until the surrounding transaction ends.
	LockByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*AttendanceRecord, error)

	GetByID(ctx context.Context, companyID, id string) (*AttendanceRecord, error)

	// Create inserts the record and its sessions. A duplicate
	// (company, employee, date) yields ErrAlreadyClockedIn.
	Create(ctx context.Context, record *AttendanceRecord) error
	Update(ctx context.Context, record *AttendanceRecord) error

	// CreateSession yields ErrAlreadyClockedIn when the record already has an open session.
	CreateSession(ctx context.Context, session *AttendanceSession) error
	// CloseSession yields ErrNotClockedIn when the session is no longer open.
	CloseSession(ctx context.Context, session *AttendanceSession) error

	// UpsertLeaveDay inserts record, or flips an existing record for the same
	// day to record.Status.
	UpsertLeaveDay(ctx context.Context, record *AttendanceRecord) error

	ListByEmployeeAndRange(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]AttendanceRecord, error)
	SumApprovedOTMinutes(ctx context.Context, companyID, employeeID string, from, to time.Time) (int, error)
}
