package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "Payroll Register"

var registerHeader = []interface{}{
	"Employee Code", "Employee Name", "Working Days", "Present Days", "Leave Days", "LOP Days",
	"OT Hours", "Base Pay", "Earnings", "OT Pay", "Gross Pay", "Deductions", "Net Pay",
}

// ExportRun writes one row per payslip followed by a totals row.
func (s *PayrollServiceImpl) ExportRun(ctx context.Context, companyID, runID string) ([]byte, error) {
	run, err := s.runRepo.GetByID(ctx, companyID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll run: %w", err)
	}
	if run.Status == payroll.RunStatusDraft || run.Status == payroll.RunStatusProcessing {
		return nil, payroll.ErrInvalidRunState
	}

	payslips, err := s.payslipRepo.ListByRun(ctx, companyID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(registerSheet, "A1", &registerHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i := range payslips {
		p := &payslips[i]
		earnings := 0.0
		for _, line := range p.Earnings {
			earnings += line.Amount.InexactFloat64()
		}

		row := []interface{}{
			p.EmployeeCode,
			p.EmployeeName,
			p.WorkingDays,
			p.PresentDays.InexactFloat64(),
			p.LeaveDays.InexactFloat64(),
			p.LopDays.InexactFloat64(),
			p.OTHours.InexactFloat64(),
			p.BasePay.InexactFloat64(),
			earnings,
			p.OTPay.InexactFloat64(),
			p.GrossPay.InexactFloat64(),
			p.TotalDeductions.InexactFloat64(),
			p.NetPay.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(registerSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write payslip row: %w", err)
		}
	}

	totalCell, err := excelize.CoordinatesToCellName(1, len(payslips)+2)
	if err != nil {
		return nil, err
	}
	totals := []interface{}{
		"TOTAL", "", "", "", "", "", "", "", "", "",
		run.TotalGross.InexactFloat64(),
		run.TotalDeductions.InexactFloat64(),
		run.TotalNet.InexactFloat64(),
	}
	if err := f.SetSheetRow(registerSheet, totalCell, &totals); err != nil {
		return nil, fmt.Errorf("failed to write totals row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
