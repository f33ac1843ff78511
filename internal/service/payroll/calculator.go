package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

const hoursPerWorkingDay = 8

var (
	hundred = decimal.NewFromInt(100)
	sixty   = decimal.NewFromInt(60)
)

// payslipInput is everything the calculation reads for one employee and month.
type payslipInput struct {
	Employee employee.Employee
	Salary   payroll.EmployeeSalary
	Month    int
	Year     int
	Holidays company.HolidaySet
	Records  []attendance.AttendanceRecord
	Leaves   []leave.LeaveRequest
}

// ComputePayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) ComputePayslip(ctx context.Context, companyID, employeeID string, month, year int) (*payroll.Payslip, error) {
	emp, err := s.employeeRepo.GetByID(ctx, companyID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	holidays, err := s.monthHolidays(ctx, companyID, month, year)
	if err != nil {
		return nil, err
	}
	return s.computeForEmployee(ctx, emp, month, year, holidays)
}

func (s *PayrollServiceImpl) monthHolidays(ctx context.Context, companyID string, month, year int) (company.HolidaySet, error) {
	from, to := utils.MonthBounds(month, year)
	holidays, err := s.companyRepo.ListHolidays(ctx, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return company.NewHolidaySet(holidays), nil
}

func (s *PayrollServiceImpl) computeForEmployee(ctx context.Context, emp employee.Employee, month, year int, holidays company.HolidaySet) (*payroll.Payslip, error) {
	from, to := utils.MonthBounds(month, year)

	salary, err := s.salaryRepo.GetEffective(ctx, emp.CompanyID, emp.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get salary for employee %s: %w", emp.ID, err)
	}
	if salary == nil {
		return nil, nil
	}
	if salary.Structure == nil {
		salary.Structure, err = s.structureRepo.GetByID(ctx, emp.CompanyID, salary.StructureID)
		if err != nil {
			return nil, fmt.Errorf("failed to get salary structure for employee %s: %w", emp.ID, err)
		}
	}

	records, err := s.attendanceRepo.ListByEmployeeAndRange(ctx, emp.CompanyID, emp.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for employee %s: %w", emp.ID, err)
	}

	leaves, err := s.leaveRepo.ListApprovedOverlapping(ctx, emp.CompanyID, emp.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave for employee %s: %w", emp.ID, err)
	}

	return calculatePayslip(payslipInput{
		Employee: emp,
		Salary:   *salary,
		Month:    month,
		Year:     year,
		Holidays: holidays,
		Records:  records,
		Leaves:   leaves,
	}), nil
}

// workingDaysBetween counts weekday dates in [start, end] that are not holidays.
func workingDaysBetween(start, end time.Time, holidays company.HolidaySet) int {
	n := 0
	utils.EachDate(start, end, func(d time.Time) {
		if !utils.IsWeekend(d) && !holidays.Contains(d) {
			n++
		}
	})
	return n
}

// calculatePayslip prorates base pay and components by attendance and leave,
// then adds overtime. Every monetary step is rounded to two places.
func calculatePayslip(in payslipInput) *payroll.Payslip {
	from, to := utils.MonthBounds(in.Month, in.Year)
	workingDays := workingDaysBetween(from, to, in.Holidays)

	presentDays := decimal.Zero
	otMinutes := 0
	for i := range in.Records {
		presentDays = presentDays.Add(in.Records[i].PresenceWeight())
		otMinutes += in.Records[i].EffectiveOTMinutes()
	}

	paidLeaveDays, lopDays := decimal.Zero, decimal.Zero
	for _, req := range in.Leaves {
		start, end, ok := utils.Overlap(req.StartDate, req.EndDate, from, to)
		if !ok {
			continue
		}
		days := decimal.NewFromInt(int64(workingDaysBetween(start, end, in.Holidays)))
		if req.LeaveTypeIsPaid {
			paidLeaveDays = paidLeaveDays.Add(days)
		} else {
			lopDays = lopDays.Add(days)
		}
	}

	working := decimal.NewFromInt(int64(workingDays))
	factor := decimal.Zero
	if workingDays > 0 {
		effective := decimal.Min(presentDays.Add(paidLeaveDays), working)
		factor = effective.Div(working)
	}

	basePay := in.Salary.BasePay.Mul(factor).Round(2)

	var earnings, deductions []payroll.PayslipLine
	totalEarnings, totalDeductions := decimal.Zero, decimal.Zero
	if in.Salary.Structure != nil {
		for _, c := range in.Salary.Structure.Components {
			var amount decimal.Decimal
			switch c.CalcType {
			case payroll.CalcTypePercentage:
				amount = basePay.Mul(c.Value).Div(hundred).Round(2)
			default:
				amount = c.Value.Mul(factor).Round(2)
			}

			line := payroll.PayslipLine{Name: c.Name, Amount: amount}
			if c.Type == payroll.ComponentTypeDeduction {
				deductions = append(deductions, line)
				totalDeductions = totalDeductions.Add(amount)
			} else {
				earnings = append(earnings, line)
				totalEarnings = totalEarnings.Add(amount)
			}
		}
	}

	otHours := decimal.NewFromInt(int64(otMinutes)).Div(sixty).Round(2)
	hourlyRate := decimal.Zero
	switch {
	case in.Employee.PayType == employee.PayTypeHourly:
		hourlyRate = in.Employee.HourlyRate
	case workingDays > 0:
		hourlyRate = basePay.Div(working.Mul(decimal.NewFromInt(hoursPerWorkingDay)))
	}
	otPay := otHours.Mul(hourlyRate).Mul(in.Employee.EffectiveOTMultiplier()).Round(2)

	gross := basePay.Add(totalEarnings).Add(otPay).Round(2)
	net := gross.Sub(totalDeductions).Round(2)

	if earnings == nil {
		earnings = []payroll.PayslipLine{}
	}
	if deductions == nil {
		deductions = []payroll.PayslipLine{}
	}

	return &payroll.Payslip{
		CompanyID:       in.Employee.CompanyID,
		EmployeeID:      in.Employee.ID,
		Month:           in.Month,
		Year:            in.Year,
		WorkingDays:     workingDays,
		PresentDays:     presentDays,
		LeaveDays:       paidLeaveDays,
		LopDays:         lopDays,
		OTHours:         otHours,
		BasePay:         basePay,
		Earnings:        earnings,
		Deductions:      deductions,
		GrossPay:        gross,
		TotalDeductions: totalDeductions,
		NetPay:          net,
		OTPay:           otPay,
		EmployeeName:    in.Employee.FullName,
		EmployeeCode:    in.Employee.EmployeeCode,
	}
}
