package attendance

import "context"

type AttendanceService interface {
	// ClockIn opens a session on today's record, creating the record on the
	// first clock-in of the day.
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut closes the open session and recomputes worked and overtime minutes.
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)

	GetTodayStatus(ctx context.Context, companyID, employeeID string) (TodayStatusResponse, error)

	// ApproveOvertime records approved overtime minutes. The monthly limit
	// check in the response is informational.
	ApproveOvertime(ctx context.Context, req ApproveOvertimeRequest) (ApproveOvertimeResponse, error)
}
