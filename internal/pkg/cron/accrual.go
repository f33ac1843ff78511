package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/lock"
)

type AccrualJobs struct {
	companyRepo  company.CompanyRepository
	leaveService leave.LeaveService
	now          func() time.Time
}

func NewAccrualJobs(companyRepo company.CompanyRepository, leaveService leave.LeaveService) *AccrualJobs {
	return &AccrualJobs{
		companyRepo:  companyRepo,
		leaveService: leaveService,
		now:          time.Now,
	}
}

func (j *AccrualJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("monthly_leave_accrual", 1*time.Hour, j.MonthlyAccrual)
}

// MonthlyAccrual credits the current month for every tenant. It only does
// work on the first day of the month (UTC); on the other hourly ticks it is a
// no-op. Reruns on the same day are harmless because completed periods are
// rejected by the leave service.
func (j *AccrualJobs) MonthlyAccrual(ctx context.Context) error {
	now := j.now().UTC()
	if now.Day() != 1 {
		return nil
	}
	return j.AccruePeriod(ctx, int(now.Month()), now.Year())
}

// AccruePeriod triggers a scheduled accrual of (month, year) for every
// tenant. Tenants that fail are logged and reported together.
func (j *AccrualJobs) AccruePeriod(ctx context.Context, month, year int) error {
	companyIDs, err := j.companyRepo.ListCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	var failed int
	for _, companyID := range companyIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		run, err := j.leaveService.TriggerAccrual(ctx, companyID, leave.TriggerAccrualRequest{
			Month: month,
			Year:  year,
		}, leave.TriggerScheduled, nil)
		switch {
		case err == nil:
			slog.Info("Cron: leave accrual completed",
				"company_id", companyID, "period", fmt.Sprintf("%d-%02d", year, month),
				"processed", run.ProcessedCount, "failed", run.FailedCount)
		case errors.Is(err, leave.ErrAccrualAlreadyCompleted), errors.Is(err, lock.ErrLockHeld):
			slog.Debug("Cron: leave accrual already handled", "company_id", companyID, "error", err)
		default:
			failed++
			slog.Error("Cron: leave accrual failed", "company_id", companyID, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("leave accrual failed for %d of %d companies", failed, len(companyIDs))
	}
	return nil
}
