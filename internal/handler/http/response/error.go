package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var geofenceErr *attendance.GeofenceError
	if errors.As(err, &geofenceErr) {
		BadRequest(w, attendance.ErrOutsideGeofence.Error(), map[string]string{
			"distance_meters": fmt.Sprintf("%.0f", geofenceErr.DistanceMeters),
			"radius_meters":   fmt.Sprintf("%.0f", geofenceErr.RadiusMeters),
		})
		return
	}

	var balanceErr *leave.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		BadRequest(w, leave.ErrInsufficientBalance.Error(), map[string]string{
			"requested": balanceErr.Requested.String(),
			"available": balanceErr.Available.String(),
		})
		return
	}

	switch {
	// Access
	case errors.Is(err, user.ErrForbidden),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, leave.ErrNotRequestOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrCompanyIDRequired),
		errors.Is(err, user.ErrEmployeeIDRequired):
		Unauthorized(w, err.Error())

	// Not found
	case errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, overtime.ErrOvertimeRuleNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound),
		errors.Is(err, leave.ErrLeaveTypeNotFound),
		errors.Is(err, leave.ErrAccrualRunNotFound),
		errors.Is(err, leave.ErrBalanceNotFound),
		errors.Is(err, payroll.ErrPayrollRunNotFound),
		errors.Is(err, payroll.ErrPayslipNotFound),
		errors.Is(err, payroll.ErrSalaryStructureMissing):
		NotFound(w, err.Error())

	// Conflicts
	case errors.Is(err, attendance.ErrAlreadyClockedIn),
		errors.Is(err, overtime.ErrOvertimeRuleExists),
		errors.Is(err, leave.ErrLeaveOverlap),
		errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed),
		errors.Is(err, leave.ErrAccrualAlreadyCompleted),
		errors.Is(err, payroll.ErrPayrollRunExists),
		errors.Is(err, payroll.ErrSalaryOverlap),
		errors.Is(err, lock.ErrLockHeld):
		Conflict(w, err.Error())

	// Rejected input or state
	case errors.Is(err, attendance.ErrNotClockedIn),
		errors.Is(err, attendance.ErrLocationRequired),
		errors.Is(err, attendance.ErrNoOvertimeToApprove),
		errors.Is(err, attendance.ErrInvalidApprovedHours),
		errors.Is(err, employee.ErrEmployeeInactive),
		errors.Is(err, leave.ErrInvalidDateRange),
		errors.Is(err, leave.ErrNoWorkingDays),
		errors.Is(err, payroll.ErrInvalidRunState):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, notification.ErrQueueFull):
		ServiceUnavailable(w, err.Error())

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
