package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	notificationService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/notification"
)

func accrualLockKey(companyID string, month, year int) string {
	return fmt.Sprintf("accrual:%s:%d-%02d", companyID, year, month)
}

func pairKey(employeeID, leaveTypeID string) string {
	return employeeID + "|" + leaveTypeID
}

// TriggerAccrual implements leave.LeaveService.
func (l *LeaveServiceImpl) TriggerAccrual(ctx context.Context, companyID string, req leave.TriggerAccrualRequest, trigger leave.TriggerType, triggeredBy *string) (leave.AccrualRunResponse, error) {
	if companyID == "" {
		return leave.AccrualRunResponse{}, user.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return leave.AccrualRunResponse{}, err
	}
	if trigger == "" {
		trigger = leave.TriggerManual
	}

	release, err := l.locker.Acquire(ctx, accrualLockKey(companyID, req.Month, req.Year), accrualLockTTL)
	if err != nil {
		return leave.AccrualRunResponse{}, err
	}
	defer release()

	run, err := l.startAccrualRun(ctx, companyID, req, trigger, triggeredBy)
	if err != nil {
		return leave.AccrualRunResponse{}, err
	}

	if err := l.runAccrual(ctx, run, req); err != nil {
		l.failAccrualRun(ctx, run, err)
		return leave.AccrualRunResponse{}, err
	}

	entries, err := l.AccrualRunRepository.ListEntries(ctx, run.ID)
	if err != nil {
		return leave.AccrualRunResponse{}, fmt.Errorf("failed to list accrual entries: %w", err)
	}
	return leave.ToAccrualRunResponse(run, entries), nil
}

// startAccrualRun creates the period's run, or resets a PENDING or FAILED one.
func (l *LeaveServiceImpl) startAccrualRun(ctx context.Context, companyID string, req leave.TriggerAccrualRequest, trigger leave.TriggerType, triggeredBy *string) (*leave.AccrualRun, error) {
	run, err := l.AccrualRunRepository.GetByPeriod(ctx, companyID, req.Month, req.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to get accrual run: %w", err)
	}
	if run != nil && run.Status == leave.AccrualRunCompleted {
		return nil, leave.ErrAccrualAlreadyCompleted
	}

	now := l.now()
	if run == nil {
		run = &leave.AccrualRun{
			CompanyID:   companyID,
			Month:       req.Month,
			Year:        req.Year,
			FiscalYear:  leave.FiscalYear(req.Month, req.Year),
			Status:      leave.AccrualRunPending,
			TriggerType: trigger,
			TriggeredBy: triggeredBy,
			StartedAt:   now,
		}
		if err := l.AccrualRunRepository.Create(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to create accrual run: %w", err)
		}
		return run, nil
	}

	run.Status = leave.AccrualRunPending
	run.TriggerType = trigger
	run.TriggeredBy = triggeredBy
	run.FailedCount = 0
	run.ErrorMessage = nil
	run.StartedAt = now
	run.CompletedAt = nil
	if err := l.AccrualRunRepository.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to restart accrual run: %w", err)
	}
	return run, nil
}

type accrualLine struct {
	leaveTypeCode string
	days          string
}

func (l *LeaveServiceImpl) runAccrual(ctx context.Context, run *leave.AccrualRun, req leave.TriggerAccrualRequest) error {
	employees, err := l.EmployeeRepository.ListActive(ctx, run.CompanyID, req.EmployeeIDs)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}
	rules, err := l.AccrualRuleRepository.ListActive(ctx, run.CompanyID, req.LeaveTypeIDs)
	if err != nil {
		return fmt.Errorf("failed to list accrual rules: %w", err)
	}

	// A restarted run keeps what an earlier attempt already credited.
	existing, err := l.AccrualRunRepository.ListEntries(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to list accrual entries: %w", err)
	}
	done := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		done[pairKey(e.EmployeeID, e.LeaveTypeID)] = struct{}{}
	}

	processed, failed := len(existing), 0
	lines := make(map[string][]accrualLine)

	for _, emp := range employees {
		for _, rule := range rules {
			if _, ok := done[pairKey(emp.ID, rule.LeaveTypeID)]; ok {
				continue
			}

			entry, err := l.accruePair(ctx, run, emp, rule)
			if err != nil {
				failed++
				slog.Warn("leave accrual failed",
					"company_id", run.CompanyID,
					"employee_id", emp.ID,
					"leave_type_id", rule.LeaveTypeID,
					"error", err)
				continue
			}
			if entry == nil {
				continue
			}
			processed++
			lines[emp.ID] = append(lines[emp.ID], accrualLine{leaveTypeCode: rule.LeaveTypeCode, days: entry.AccrualDays.String()})
		}
	}

	l.notifyAccruals(ctx, run, lines)

	now := l.now()
	run.Status = leave.AccrualRunCompleted
	run.ProcessedCount = processed
	run.FailedCount = failed
	run.CompletedAt = &now
	if err := l.AccrualRunRepository.Update(ctx, run); err != nil {
		return fmt.Errorf("failed to complete accrual run: %w", err)
	}

	slog.Info("leave accrual completed",
		"company_id", run.CompanyID,
		"period", fmt.Sprintf("%d-%02d", run.Year, run.Month),
		"processed", processed,
		"failed", failed)
	return nil
}

// accruePair credits one rule to one employee in its own transaction. It
// returns nil, nil when the cap leaves nothing to credit.
func (l *LeaveServiceImpl) accruePair(ctx context.Context, run *leave.AccrualRun, emp employee.Employee, rule leave.AccrualRule) (*leave.AccrualEntry, error) {
	var entry *leave.AccrualEntry
	err := l.db.WithinTransaction(ctx, func(ctx context.Context) error {
		balance, err := l.LeaveBalanceRepository.GetOrCreateForUpdate(ctx, run.CompanyID, emp.ID, rule.LeaveTypeID, run.Year)
		if err != nil {
			return fmt.Errorf("failed to get leave balance: %w", err)
		}

		before := balance.TotalDays
		days, capped := rule.AccrualFor(before)
		if !days.IsPositive() {
			return nil
		}

		after, err := l.LeaveBalanceRepository.AddTotal(ctx, balance.ID, days)
		if err != nil {
			return fmt.Errorf("failed to credit accrual: %w", err)
		}

		entry = &leave.AccrualEntry{
			RunID:         run.ID,
			CompanyID:     run.CompanyID,
			EmployeeID:    emp.ID,
			LeaveTypeID:   rule.LeaveTypeID,
			AccrualRuleID: rule.ID,
			BalanceBefore: before,
			AccrualDays:   days,
			BalanceAfter:  after.TotalDays,
			CapApplied:    capped,
		}
		if err := l.AccrualRunRepository.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to write accrual entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *LeaveServiceImpl) notifyAccruals(ctx context.Context, run *leave.AccrualRun, lines map[string][]accrualLine) {
	reqs := make([]notification.CreateNotificationRequest, 0, len(lines))
	for employeeID, accrued := range lines {
		parts := make([]string, 0, len(accrued))
		for _, a := range accrued {
			parts = append(parts, fmt.Sprintf("%s +%s", a.leaveTypeCode, a.days))
		}
		recipient := employeeID
		reqs = append(reqs, notification.CreateNotificationRequest{
			CompanyID:   run.CompanyID,
			RecipientID: &recipient,
			Type:        notification.TypeLeaveAccrued,
			Title:       "Leave balance credited",
			Message:     fmt.Sprintf("Monthly accrual for %d-%02d: %s", run.Year, run.Month, strings.Join(parts, ", ")),
			Data: map[string]interface{}{
				"accrual_run_id": run.ID,
			},
		})
	}
	notificationService.Dispatch(ctx, l.notificationService, reqs...)
}

func (l *LeaveServiceImpl) failAccrualRun(ctx context.Context, run *leave.AccrualRun, cause error) {
	msg := cause.Error()
	run.Status = leave.AccrualRunFailed
	run.ErrorMessage = &msg
	if err := l.AccrualRunRepository.Update(context.WithoutCancel(ctx), run); err != nil {
		slog.Error("failed to mark accrual run as failed", "accrual_run_id", run.ID, "error", err)
	}
}

// GetAccrualRun implements leave.LeaveService.
func (l *LeaveServiceImpl) GetAccrualRun(ctx context.Context, companyID, runID string) (leave.AccrualRunResponse, error) {
	run, err := l.AccrualRunRepository.GetByID(ctx, companyID, runID)
	if err != nil {
		return leave.AccrualRunResponse{}, fmt.Errorf("failed to get accrual run: %w", err)
	}
	entries, err := l.AccrualRunRepository.ListEntries(ctx, run.ID)
	if err != nil {
		return leave.AccrualRunResponse{}, fmt.Errorf("failed to list accrual entries: %w", err)
	}
	return leave.ToAccrualRunResponse(run, entries), nil
}
