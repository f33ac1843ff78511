package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	notificationService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/notification"
	"github.com/shopspring/decimal"
)

const processLockTTL = 15 * time.Minute

// ========== PAYROLL RUNS ==========

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.PayrollRunResponse, error) {
	if req.CompanyID == "" {
		return payroll.PayrollRunResponse{}, user.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run := payroll.PayrollRun{
		CompanyID:       req.CompanyID,
		Month:           req.Month,
		Year:            req.Year,
		Status:          payroll.RunStatusDraft,
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
		CreatedBy:       req.CreatedBy,
	}
	if err := s.runRepo.Create(ctx, &run); err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return payroll.ToRunResponse(&run), nil
}

// ProcessRun marks the run PROCESSING, then replaces its payslips and totals in
// one transaction. Any failure leaves the run in DRAFT with no payslips.
func (s *PayrollServiceImpl) ProcessRun(ctx context.Context, companyID, runID string) (payroll.PayrollRunResponse, error) {
	release, err := s.locker.Acquire(ctx, processLockKey(runID), processLockTTL)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	defer release()

	run, err := s.runRepo.GetByID(ctx, companyID, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	if run.Status != payroll.RunStatusDraft {
		return payroll.PayrollRunResponse{}, payroll.ErrInvalidRunState
	}

	if err := s.runRepo.Transition(ctx, companyID, runID, payroll.RunStatusDraft, payroll.RunStatusProcessing, s.now(), nil); err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to start payroll run: %w", err)
	}

	if err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.computeRun(ctx, run)
	}); err != nil {
		// the caller may have gone away, the run must still leave PROCESSING
		revertCtx := context.WithoutCancel(ctx)
		if rErr := s.runRepo.Transition(revertCtx, companyID, runID, payroll.RunStatusProcessing, payroll.RunStatusDraft, s.now(), nil); rErr != nil {
			slog.Error("failed to revert payroll run to draft", "run_id", runID, "error", rErr)
		}
		slog.Error("payroll run failed", "run_id", runID, "company_id", companyID, "error", err)
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to process payroll run: %w", err)
	}

	updated, err := s.runRepo.GetByID(ctx, companyID, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	slog.Info("payroll run computed",
		"run_id", runID,
		"company_id", companyID,
		"processed", updated.ProcessedCount,
		"total_net", updated.TotalNet.String(),
	)
	return payroll.ToRunResponse(updated), nil
}

func (s *PayrollServiceImpl) computeRun(ctx context.Context, run *payroll.PayrollRun) error {
	if err := s.payslipRepo.DeleteByRun(ctx, run.ID); err != nil {
		return fmt.Errorf("failed to clear payslips: %w", err)
	}

	employees, err := s.employeeRepo.ListActive(ctx, run.CompanyID, nil)
	if err != nil {
		return fmt.Errorf("failed to list employees: %w", err)
	}

	holidays, err := s.monthHolidays(ctx, run.CompanyID, run.Month, run.Year)
	if err != nil {
		return err
	}

	totals := payroll.RunTotals{
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	}
	for _, emp := range employees {
		slip, err := s.computeForEmployee(ctx, emp, run.Month, run.Year, holidays)
		if err != nil {
			return err
		}
		if slip == nil {
			continue
		}

		slip.RunID = run.ID
		if err := s.payslipRepo.Create(ctx, slip); err != nil {
			return fmt.Errorf("failed to create payslip for employee %s: %w", emp.ID, err)
		}

		totals.TotalGross = totals.TotalGross.Add(slip.GrossPay)
		totals.TotalDeductions = totals.TotalDeductions.Add(slip.TotalDeductions)
		totals.TotalNet = totals.TotalNet.Add(slip.NetPay)
		totals.ProcessedCount++
	}

	totals.TotalGross = totals.TotalGross.Round(2)
	totals.TotalDeductions = totals.TotalDeductions.Round(2)
	totals.TotalNet = totals.TotalNet.Round(2)

	if err := s.runRepo.Complete(ctx, run.CompanyID, run.ID, totals, s.now()); err != nil {
		return fmt.Errorf("failed to complete payroll run: %w", err)
	}
	return nil
}

// ApproveRun releases the run's payslips to employees.
func (s *PayrollServiceImpl) ApproveRun(ctx context.Context, companyID, runID, approverID string) (payroll.PayrollRunResponse, error) {
	var approvedBy *string
	if approverID != "" {
		approvedBy = &approverID
	}

	if err := s.runRepo.Transition(ctx, companyID, runID, payroll.RunStatusComputed, payroll.RunStatusApproved, s.now(), approvedBy); err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to approve payroll run: %w", err)
	}

	run, err := s.runRepo.GetByID(ctx, companyID, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	payslips, err := s.payslipRepo.ListByRun(ctx, companyID, runID)
	if err != nil {
		slog.Warn("failed to list payslips for release notifications", "run_id", runID, "error", err)
		return payroll.ToRunResponse(run), nil
	}
	s.notifyReleased(ctx, run, approvedBy, payslips)

	return payroll.ToRunResponse(run), nil
}

func (s *PayrollServiceImpl) notifyReleased(ctx context.Context, run *payroll.PayrollRun, senderID *string, payslips []payroll.Payslip) {
	period := time.Date(run.Year, time.Month(run.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")

	reqs := make([]notification.CreateNotificationRequest, 0, len(payslips))
	for i := range payslips {
		recipient := payslips[i].EmployeeID
		reqs = append(reqs, notification.CreateNotificationRequest{
			CompanyID:   run.CompanyID,
			RecipientID: &recipient,
			SenderID:    senderID,
			Type:        notification.TypePayslipReleased,
			Title:       "Payslip Released",
			Message:     fmt.Sprintf("Your payslip for %s is available", period),
			Link:        "/payslips/" + payslips[i].ID,
			Data: map[string]interface{}{
				"payslip_id": payslips[i].ID,
				"run_id":     run.ID,
				"net_pay":    payslips[i].NetPay.String(),
			},
		})
	}
	notificationService.Dispatch(ctx, s.notificationService, reqs...)
}

func (s *PayrollServiceImpl) MarkAsPaid(ctx context.Context, companyID, runID string) (payroll.PayrollRunResponse, error) {
	if err := s.runRepo.Transition(ctx, companyID, runID, payroll.RunStatusApproved, payroll.RunStatusPaid, s.now(), nil); err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to mark payroll run as paid: %w", err)
	}

	run, err := s.runRepo.GetByID(ctx, companyID, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return payroll.ToRunResponse(run), nil
}

func (s *PayrollServiceImpl) DeleteRun(ctx context.Context, companyID, runID string) error {
	if err := s.runRepo.Delete(ctx, companyID, runID); err != nil {
		return fmt.Errorf("failed to delete payroll run: %w", err)
	}
	return nil
}

func processLockKey(runID string) string {
	return "payroll-run:" + runID
}
