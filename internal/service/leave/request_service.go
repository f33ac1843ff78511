package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/utils"
	notificationService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/notification"
	"github.com/shopspring/decimal"
)

// CreateRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if req.CompanyID == "" {
		return leave.LeaveRequestResponse{}, user.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	startDate, endDate := req.Dates()
	if startDate.After(endDate) {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidDateRange
	}

	totalDays := decimal.NewFromInt(int64(utils.CountWeekdays(startDate, endDate)))
	if totalDays.IsZero() {
		return leave.LeaveRequestResponse{}, leave.ErrNoWorkingDays
	}

	emp, err := l.EmployeeRepository.GetByID(ctx, req.CompanyID, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive() {
		return leave.LeaveRequestResponse{}, employee.ErrEmployeeInactive
	}

	leaveType, err := l.LeaveTypeRepository.GetByID(ctx, req.CompanyID, req.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	if !leaveType.IsActive {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveTypeNotFound
	}

	request := &leave.LeaveRequest{
		CompanyID:   req.CompanyID,
		EmployeeID:  req.EmployeeID,
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   startDate,
		EndDate:     endDate,
		TotalDays:   totalDays,
		Reason:      req.Reason,
		Status:      leave.RequestStatusPending,
	}

	err = l.db.WithinTransaction(ctx, func(ctx context.Context) error {
		// Overlap and sufficiency are checked under the employee lock and the
		// balance row lock, so concurrent requests cannot both pass.
		if err := l.LeaveRequestRepository.LockEmployee(ctx, req.CompanyID, req.EmployeeID); err != nil {
			return err
		}

		overlap, err := l.LeaveRequestRepository.HasOverlap(ctx, req.CompanyID, req.EmployeeID, startDate, endDate)
		if err != nil {
			return fmt.Errorf("failed to check overlapping requests: %w", err)
		}
		if overlap {
			return leave.ErrLeaveOverlap
		}

		balance, err := l.LeaveBalanceRepository.GetForUpdate(ctx, req.CompanyID, req.EmployeeID, req.LeaveTypeID, request.BalanceYear())
		if err != nil {
			return fmt.Errorf("failed to get leave balance: %w", err)
		}

		available := decimal.Zero
		if balance != nil {
			available = balance.Available()
		}
		if totalDays.GreaterThan(available) && !leaveType.IsLOP() {
			return &leave.InsufficientBalanceError{Requested: totalDays, Available: available}
		}

		if err := l.LeaveRequestRepository.Create(ctx, request); err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}

		if balance != nil {
			if err := l.LeaveBalanceRepository.AddPending(ctx, balance.ID, totalDays); err != nil {
				return fmt.Errorf("failed to reserve pending days: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	notificationService.Dispatch(ctx, l.notificationService, notification.CreateNotificationRequest{
		CompanyID:      req.CompanyID,
		RecipientID:    emp.ManagerID,
		RecipientRoles: []user.Role{user.RoleHR},
		SenderID:       &emp.ID,
		Type:           notification.TypeLeaveRequested,
		Title:          "New leave request",
		Message: fmt.Sprintf("%s requested %s day(s) of %s from %s to %s",
			emp.FullName, totalDays.String(), leaveType.Name,
			startDate.Format(utils.DateLayout), endDate.Format(utils.DateLayout)),
		Link: "/leave/requests/" + request.ID,
		Data: map[string]interface{}{
			"leave_request_id": request.ID,
			"employee_id":      emp.ID,
		},
	})

	return leave.ToRequestResponse(request), nil
}

// lockPendingForApprover loads the request under a row lock and checks that
// approver may decide it.
func (l *LeaveServiceImpl) lockPendingForApprover(ctx context.Context, companyID, requestID string, approver user.Actor) (*leave.LeaveRequest, error) {
	request, err := l.LeaveRequestRepository.LockByID(ctx, companyID, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}

	emp, err := l.EmployeeRepository.GetByID(ctx, companyID, request.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if approver.CompanyID != companyID || !approver.CanApproveFor(emp.ManagerID) {
		return nil, user.ErrForbidden
	}

	if request.Status != leave.RequestStatusPending {
		return nil, leave.ErrLeaveRequestAlreadyProcessed
	}
	return request, nil
}

// ApproveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) ApproveRequest(ctx context.Context, companyID, requestID string, approver user.Actor) (leave.LeaveRequestResponse, error) {
	settings, err := l.CompanyRepository.GetSettings(ctx, companyID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get company settings: %w", err)
	}

	var request *leave.LeaveRequest
	err = l.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		request, err = l.lockPendingForApprover(ctx, companyID, requestID, approver)
		if err != nil {
			return err
		}

		balance, err := l.LeaveBalanceRepository.Get(ctx, companyID, request.EmployeeID, request.LeaveTypeID, request.BalanceYear())
		if err != nil {
			return fmt.Errorf("failed to get leave balance: %w", err)
		}
		if balance != nil {
			if err := l.LeaveBalanceRepository.MovePendingToUsed(ctx, balance.ID, request.TotalDays); err != nil {
				return fmt.Errorf("failed to move pending days to used: %w", err)
			}
		}

		now := l.now()
		request.Status = leave.RequestStatusApproved
		request.ApprovedBy = actorRef(approver)
		request.ApprovedAt = &now
		if err := l.LeaveRequestRepository.UpdateStatus(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		var upsertErr error
		utils.EachDate(request.StartDate, request.EndDate, func(d time.Time) {
			if upsertErr != nil || utils.IsWeekend(d) {
				return
			}
			record := &attendance.AttendanceRecord{
				CompanyID:           companyID,
				EmployeeID:          request.EmployeeID,
				Date:                d,
				Status:              attendance.StatusLeave,
				StandardWorkMinutes: settings.StandardMinutes(),
				Source:              attendance.SourceSystem,
			}
			if err := l.attendanceRepo.UpsertLeaveDay(ctx, record); err != nil {
				upsertErr = fmt.Errorf("failed to mark %s as leave: %w", d.Format(utils.DateLayout), err)
			}
		})
		return upsertErr
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.notifyDecision(ctx, request, approver, notification.TypeLeaveApproved, "Leave approved",
		fmt.Sprintf("Your leave from %s to %s has been approved",
			request.StartDate.Format(utils.DateLayout), request.EndDate.Format(utils.DateLayout)))

	return leave.ToRequestResponse(request), nil
}

// RejectRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) RejectRequest(ctx context.Context, companyID, requestID string, approver user.Actor, reason string) (leave.LeaveRequestResponse, error) {
	var request *leave.LeaveRequest
	err := l.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		request, err = l.lockPendingForApprover(ctx, companyID, requestID, approver)
		if err != nil {
			return err
		}

		if err := l.releasePending(ctx, request); err != nil {
			return err
		}

		now := l.now()
		request.Status = leave.RequestStatusRejected
		request.ApprovedBy = actorRef(approver)
		request.ApprovedAt = &now
		if reason != "" {
			request.RejectionReason = &reason
		}
		if err := l.LeaveRequestRepository.UpdateStatus(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	message := fmt.Sprintf("Your leave from %s to %s has been rejected",
		request.StartDate.Format(utils.DateLayout), request.EndDate.Format(utils.DateLayout))
	if reason != "" {
		message += ": " + reason
	}
	l.notifyDecision(ctx, request, approver, notification.TypeLeaveRejected, "Leave rejected", message)

	return leave.ToRequestResponse(request), nil
}

// CancelRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CancelRequest(ctx context.Context, companyID, requestID, employeeID string) (leave.LeaveRequestResponse, error) {
	if employeeID == "" {
		return leave.LeaveRequestResponse{}, user.ErrEmployeeIDRequired
	}

	var request *leave.LeaveRequest
	err := l.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		request, err = l.LeaveRequestRepository.LockByID(ctx, companyID, requestID)
		if err != nil {
			return fmt.Errorf("failed to get leave request: %w", err)
		}
		if request.EmployeeID != employeeID {
			return leave.ErrNotRequestOwner
		}
		if request.Status != leave.RequestStatusPending {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		if err := l.releasePending(ctx, request); err != nil {
			return err
		}

		now := l.now()
		request.Status = leave.RequestStatusCancelled
		request.CancelledAt = &now
		if err := l.LeaveRequestRepository.UpdateStatus(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return leave.ToRequestResponse(request), nil
}

func (l *LeaveServiceImpl) releasePending(ctx context.Context, request *leave.LeaveRequest) error {
	balance, err := l.LeaveBalanceRepository.Get(ctx, request.CompanyID, request.EmployeeID, request.LeaveTypeID, request.BalanceYear())
	if err != nil {
		return fmt.Errorf("failed to get leave balance: %w", err)
	}
	if balance == nil {
		return nil
	}
	if err := l.LeaveBalanceRepository.RemovePending(ctx, balance.ID, request.TotalDays); err != nil {
		return fmt.Errorf("failed to release pending days: %w", err)
	}
	return nil
}

func (l *LeaveServiceImpl) notifyDecision(ctx context.Context, request *leave.LeaveRequest, approver user.Actor, kind notification.NotificationType, title, message string) {
	notificationService.Dispatch(ctx, l.notificationService, notification.CreateNotificationRequest{
		CompanyID:   request.CompanyID,
		RecipientID: &request.EmployeeID,
		SenderID:    actorRef(approver),
		Type:        kind,
		Title:       title,
		Message:     message,
		Link:        "/leave/requests/" + request.ID,
		Data: map[string]interface{}{
			"leave_request_id": request.ID,
			"status":           string(request.Status),
		},
	})
}

// actorRef identifies who acted, preferring the employee record over the login.
func actorRef(a user.Actor) *string {
	switch {
	case a.EmployeeID != "":
		id := a.EmployeeID
		return &id
	case a.UserID != "":
		id := a.UserID
		return &id
	default:
		return nil
	}
}
