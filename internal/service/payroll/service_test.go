package payroll

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification/mock"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/utils"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
)

const companyID = "company-1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) time.Time {
	d, err := time.Parse(utils.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	svc      *PayrollServiceImpl
	store    *memory.Store
	payslips payroll.PayslipRepository
	records  attendance.AttendanceRepository
	requests leave.LeaveRequestRepository
	locker   *lock.LocalLocker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.PutSettings(company.Settings{CompanyID: companyID})
	store.PutEmployee(employee.Employee{
		ID: "emp-1", CompanyID: companyID, EmployeeCode: "E001", FullName: "Ayu",
		Status: employee.StatusActive, PayType: employee.PayTypeMonthly,
	})
	store.PutEmployee(employee.Employee{
		ID: "emp-2", CompanyID: companyID, EmployeeCode: "E002", FullName: "Budi",
		Status: employee.StatusActive, PayType: employee.PayTypeMonthly,
	})
	store.PutEmployee(employee.Employee{
		ID: "emp-3", CompanyID: companyID, EmployeeCode: "E003", FullName: "Citra",
		Status: employee.StatusActive, PayType: employee.PayTypeMonthly,
	})

	f := &fixture{
		store:    store,
		payslips: memory.NewPayslipRepository(store),
		records:  memory.NewAttendanceRepository(store),
		requests: memory.NewLeaveRequestRepository(store),
		locker:   lock.NewLocalLocker(),
	}
	f.svc = f.build(f.payslips, nil)
	return f
}

func (f *fixture) build(payslips payroll.PayslipRepository, notifier notification.Service) *PayrollServiceImpl {
	svc := NewPayrollService(
		f.store,
		memory.NewSalaryStructureRepository(f.store),
		memory.NewEmployeeSalaryRepository(f.store),
		memory.NewPayrollRunRepository(f.store),
		payslips,
		memory.NewEmployeeRepository(f.store),
		memory.NewCompanyRepository(f.store),
		f.records,
		f.requests,
		f.locker,
		notifier,
	).(*PayrollServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC) }
	return svc
}

// standardStructure has a 10% allowance and a fixed 1000 deduction.
func (f *fixture) standardStructure(t *testing.T) payroll.SalaryStructure {
	t.Helper()
	st, err := f.svc.CreateStructure(context.Background(), payroll.CreateStructureRequest{
		CompanyID: companyID,
		Name:      "Staff",
		Components: []payroll.SalaryComponent{
			{Name: "Allowance", Type: payroll.ComponentTypeEarning, CalcType: payroll.CalcTypePercentage, Value: dec("10")},
			{Name: "Insurance", Type: payroll.ComponentTypeDeduction, CalcType: payroll.CalcTypeFixed, Value: dec("1000")},
		},
	})
	require.NoError(t, err)
	return st
}

func (f *fixture) assign(t *testing.T, employeeID, structureID, basePay, from string) {
	t.Helper()
	_, err := f.svc.AssignSalary(context.Background(), payroll.AssignSalaryRequest{
		CompanyID:     companyID,
		EmployeeID:    employeeID,
		StructureID:   structureID,
		BasePay:       dec(basePay),
		EffectiveFrom: from,
	})
	require.NoError(t, err)
}

// present marks the employee PRESENT on the first n weekdays of March 2026.
func (f *fixture) present(t *testing.T, employeeID string, n int) {
	t.Helper()
	d := date("2026-03-01")
	for n > 0 {
		if !utils.IsWeekend(d) {
			require.NoError(t, f.records.Create(context.Background(), &attendance.AttendanceRecord{
				CompanyID:  companyID,
				EmployeeID: employeeID,
				Date:       d,
				Status:     attendance.StatusPresent,
			}))
			n--
		}
		d = d.AddDate(0, 0, 1)
	}
}

func (f *fixture) marchRun(t *testing.T) payroll.PayrollRunResponse {
	t.Helper()
	run, err := f.svc.CreateRun(context.Background(), payroll.CreateRunRequest{CompanyID: companyID, Month: 3, Year: 2026})
	require.NoError(t, err)
	require.Equal(t, payroll.RunStatusDraft, run.Status)
	return run
}

func TestComputePayslip_ProratesByPresence(t *testing.T) {
	f := newFixture(t)
	st := f.standardStructure(t)
	f.assign(t, "emp-1", st.ID, "50000", "2026-01-01")
	f.present(t, "emp-1", 15)

	slip, err := f.svc.ComputePayslip(context.Background(), companyID, "emp-1", 3, 2026)
	require.NoError(t, err)
	require.NotNil(t, slip)

	assert.Equal(t, 22, slip.WorkingDays)
	assert.True(t, slip.PresentDays.Equal(dec("15")))
	assert.Equal(t, "34090.91", slip.BasePay.StringFixed(2))
	require.Len(t, slip.Earnings, 1)
	assert.Equal(t, "3409.09", slip.Earnings[0].Amount.StringFixed(2))
	require.Len(t, slip.Deductions, 1)
	assert.Equal(t, "681.82", slip.Deductions[0].Amount.StringFixed(2))
	assert.Equal(t, "37500.00", slip.GrossPay.StringFixed(2))
	assert.Equal(t, "36818.18", slip.NetPay.StringFixed(2))
}

func TestComputePayslip_NoSalary(t *testing.T) {
	f := newFixture(t)

	slip, err := f.svc.ComputePayslip(context.Background(), companyID, "emp-1", 3, 2026)
	require.NoError(t, err)
	assert.Nil(t, slip)
}

func TestComputePayslip_UsesLatestAssignment(t *testing.T) {
	f := newFixture(t)
	st := f.standardStructure(t)
	f.assign(t, "emp-1", st.ID, "40000", "2026-01-01")
	f.assign(t, "emp-1", st.ID, "44000", "2026-03-16")
	f.present(t, "emp-1", 22)

	slip, err := f.svc.ComputePayslip(context.Background(), companyID, "emp-1", 3, 2026)
	require.NoError(t, err)
	assert.Equal(t, "44000.00", slip.BasePay.StringFixed(2))
}

func TestCalculatePayslip_Holidays(t *testing.T) {
	emp := employee.Employee{ID: "emp-1", CompanyID: companyID}
	salary := payroll.EmployeeSalary{BasePay: dec("21000")}

	tests := []struct {
		name        string
		holidays    []company.Holiday
		workingDays int
	}{
		{name: "none", workingDays: 22},
		{name: "weekday holiday", holidays: []company.Holiday{{Date: date("2026-01-01"), IsActive: true}}, workingDays: 21},
		{name: "weekend holiday", holidays: []company.Holiday{{Date: date("2026-01-03"), IsActive: true}}, workingDays: 22},
		{name: "inactive holiday", holidays: []company.Holiday{{Date: date("2026-01-01"), IsActive: false}}, workingDays: 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slip := calculatePayslip(payslipInput{
				Employee: emp,
				Salary:   salary,
				Month:    1,
				Year:     2026,
				Holidays: company.NewHolidaySet(tt.holidays),
			})
			assert.Equal(t, tt.workingDays, slip.WorkingDays)
			assert.True(t, slip.BasePay.IsZero())
		})
	}
}

func TestCalculatePayslip_LeaveSplit(t *testing.T) {
	emp := employee.Employee{ID: "emp-1", CompanyID: companyID}
	salary := payroll.EmployeeSalary{BasePay: dec("22000")}

	var records []attendance.AttendanceRecord
	utils.EachDate(date("2026-03-02"), date("2026-03-25"), func(d time.Time) {
		if !utils.IsWeekend(d) {
			records = append(records, attendance.AttendanceRecord{Date: d, Status: attendance.StatusPresent})
		}
	})
	require.Len(t, records, 18)

	slip := calculatePayslip(payslipInput{
		Employee: emp,
		Salary:   salary,
		Month:    3,
		Year:     2026,
		Holidays: company.HolidaySet{},
		Records:  records,
		Leaves: []leave.LeaveRequest{
			// Thu, Fri
			{StartDate: date("2026-03-26"), EndDate: date("2026-03-27"), LeaveTypeIsPaid: true},
			// Sat to Tue, two weekdays
			{StartDate: date("2026-03-28"), EndDate: date("2026-03-31"), LeaveTypeIsPaid: false},
		},
	})

	assert.True(t, slip.LeaveDays.Equal(dec("2")))
	assert.True(t, slip.LopDays.Equal(dec("2")))
	assert.Equal(t, "20000.00", slip.BasePay.StringFixed(2))
}

func TestCalculatePayslip_LeaveClippedToMonth(t *testing.T) {
	slip := calculatePayslip(payslipInput{
		Employee: employee.Employee{ID: "emp-1", CompanyID: companyID},
		Salary:   payroll.EmployeeSalary{BasePay: dec("22000")},
		Month:    3,
		Year:     2026,
		Holidays: company.HolidaySet{},
		Leaves: []leave.LeaveRequest{
			{StartDate: date("2026-02-26"), EndDate: date("2026-03-03"), LeaveTypeIsPaid: true},
		},
	})

	assert.True(t, slip.LeaveDays.Equal(dec("2")))
	assert.Equal(t, "2000.00", slip.BasePay.StringFixed(2))
}

func TestCalculatePayslip_HalfDaysAndCap(t *testing.T) {
	var records []attendance.AttendanceRecord
	utils.EachDate(date("2026-03-01"), date("2026-03-31"), func(d time.Time) {
		records = append(records, attendance.AttendanceRecord{Date: d, Status: attendance.StatusWFH})
	})
	records[0].Status = attendance.StatusHalfDay

	slip := calculatePayslip(payslipInput{
		Employee: employee.Employee{ID: "emp-1", CompanyID: companyID},
		Salary:   payroll.EmployeeSalary{BasePay: dec("10000")},
		Month:    3,
		Year:     2026,
		Holidays: company.HolidaySet{},
		Records:  records,
	})

	assert.True(t, slip.PresentDays.Equal(dec("30.5")))
	// presence beyond the working days never pays more than base
	assert.Equal(t, "10000.00", slip.BasePay.StringFixed(2))
}

func TestCalculatePayslip_Overtime(t *testing.T) {
	ot := 120

	t.Run("hourly", func(t *testing.T) {
		slip := calculatePayslip(payslipInput{
			Employee: employee.Employee{
				ID: "emp-1", CompanyID: companyID,
				PayType: employee.PayTypeHourly, HourlyRate: dec("100"), OTMultiplier: dec("1.5"),
			},
			Salary:   payroll.EmployeeSalary{BasePay: dec("0")},
			Month:    3,
			Year:     2026,
			Holidays: company.HolidaySet{},
			Records:  []attendance.AttendanceRecord{{Date: date("2026-03-02"), Status: attendance.StatusPresent, OTMinutesApproved: &ot}},
		})
		assert.True(t, slip.OTHours.Equal(dec("2")))
		assert.Equal(t, "300.00", slip.OTPay.StringFixed(2))
	})

	t.Run("monthly", func(t *testing.T) {
		var records []attendance.AttendanceRecord
		utils.EachDate(date("2026-03-01"), date("2026-03-31"), func(d time.Time) {
			if !utils.IsWeekend(d) {
				records = append(records, attendance.AttendanceRecord{Date: d, Status: attendance.StatusPresent})
			}
		})
		records[0].OTMinutesCalculated = &ot

		slip := calculatePayslip(payslipInput{
			Employee: employee.Employee{ID: "emp-1", CompanyID: companyID, PayType: employee.PayTypeMonthly},
			Salary:   payroll.EmployeeSalary{BasePay: dec("17600")},
			Month:    3,
			Year:     2026,
			Holidays: company.HolidaySet{},
			Records:  records,
		})
		// 17600 / (22 * 8) = 100 per hour, multiplier defaults to 1
		assert.Equal(t, "200.00", slip.OTPay.StringFixed(2))
		assert.Equal(t, "17800.00", slip.GrossPay.StringFixed(2))
	})
}

func TestProcessRun(t *testing.T) {
	f := newFixture(t)
	st := f.standardStructure(t)
	f.assign(t, "emp-1", st.ID, "50000", "2026-01-01")
	f.assign(t, "emp-2", st.ID, "22000", "2026-01-01")
	f.present(t, "emp-1", 15)
	f.present(t, "emp-2", 22)
	run := f.marchRun(t)

	got, err := f.svc.ProcessRun(context.Background(), companyID, run.ID)
	require.NoError(t, err)

	// emp-3 has no salary and is skipped
	assert.Equal(t, payroll.RunStatusComputed, got.Status)
	assert.Equal(t, 2, got.ProcessedCount)
	assert.NotNil(t, got.ComputedAt)

	slips, err := f.svc.ListPayslips(context.Background(), companyID, run.ID)
	require.NoError(t, err)
	require.Len(t, slips, 2)
	assert.Equal(t, "emp-1", slips[0].EmployeeID)
	assert.Equal(t, "Ayu", slips[0].EmployeeName)

	gross, net := decimal.Zero, decimal.Zero
	for _, s := range slips {
		gross = gross.Add(s.GrossPay)
		net = net.Add(s.NetPay)
	}
	assert.True(t, got.TotalGross.Equal(gross))
	assert.True(t, got.TotalNet.Equal(net))
	assert.Equal(t, "36818.18", slips[0].NetPay.StringFixed(2))
	assert.Equal(t, "23200.00", slips[1].NetPay.StringFixed(2))

	_, err = f.svc.ProcessRun(context.Background(), companyID, run.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidRunState)
}

type failingPayslipRepo struct {
	payroll.PayslipRepository
	failAfter int
	created   int
}

func (r *failingPayslipRepo) Create(ctx context.Context, p *payroll.Payslip) error {
	if r.created >= r.failAfter {
		return errors.New("disk full")
	}
	r.created++
	return r.PayslipRepository.Create(ctx, p)
}

func TestProcessRun_FailureLeavesDraft(t *testing.T) {
	f := newFixture(t)
	st := f.standardStructure(t)
	f.assign(t, "emp-1", st.ID, "50000", "2026-01-01")
	f.assign(t, "emp-2", st.ID, "22000", "2026-01-01")
	run := f.marchRun(t)

	svc := f.build(&failingPayslipRepo{PayslipRepository: f.payslips, failAfter: 1}, nil)
	_, err := svc.ProcessRun(context.Background(), companyID, run.ID)
	require.Error(t, err)

	got, err := f.svc.GetRun(context.Background(), companyID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusDraft, got.Status)
	assert.Zero(t, got.ProcessedCount)

	slips, err := f.svc.ListPayslips(context.Background(), companyID, run.ID)
	require.NoError(t, err)
	assert.Empty(t, slips)

	// the run can be processed again once the fault clears
	got, err = f.svc.ProcessRun(context.Background(), companyID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ProcessedCount)
}

func TestProcessRun_LockHeld(t *testing.T) {
	f := newFixture(t)
	run := f.marchRun(t)

	release, err := f.locker.Acquire(context.Background(), processLockKey(run.ID), time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = f.svc.ProcessRun(context.Background(), companyID, run.ID)
	assert.ErrorIs(t, err, lock.ErrLockHeld)
}

func TestRunStateMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	run := f.marchRun(t)

	_, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{CompanyID: companyID, Month: 3, Year: 2026})
	assert.ErrorIs(t, err, payroll.ErrPayrollRunExists)

	_, err = f.svc.ApproveRun(ctx, companyID, run.ID, "hr-1")
	assert.ErrorIs(t, err, payroll.ErrInvalidRunState)
	_, err = f.svc.MarkAsPaid(ctx, companyID, run.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidRunState)

	_, err = f.svc.ProcessRun(ctx, companyID, run.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.DeleteRun(ctx, companyID, run.ID), payroll.ErrInvalidRunState)
	_, err = f.svc.MarkAsPaid(ctx, companyID, run.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidRunState)

	approved, err := f.svc.ApproveRun(ctx, companyID, run.ID, "hr-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusApproved, approved.Status)
	assert.NotNil(t, approved.ApprovedAt)

	paid, err := f.svc.MarkAsPaid(ctx, companyID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	_, err = f.svc.GetRun(ctx, "company-2", run.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRunNotFound)
}

func TestDeleteRun_Draft(t *testing.T) {
	f := newFixture(t)
	run := f.marchRun(t)

	require.NoError(t, f.svc.DeleteRun(context.Background(), companyID, run.ID))
	_, err := f.svc.GetRun(context.Background(), companyID, run.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRunNotFound)
}

func TestCreateRun_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateRun(context.Background(), payroll.CreateRunRequest{CompanyID: companyID, Month: 13, Year: 2026})
	assert.Error(t, err)
	_, err = f.svc.CreateRun(context.Background(), payroll.CreateRunRequest{CompanyID: companyID, Month: 1, Year: 26})
	assert.Error(t, err)
}

func TestPayslipVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	notifier := mock.NewMockService(ctrl)
	done := make(chan []notification.CreateNotificationRequest, 1)
	notifier.EXPECT().
		QueueBulkNotification(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, reqs []notification.CreateNotificationRequest) error {
			done <- reqs
			return nil
		})
	f.svc = f.build(f.payslips, notifier)

	st := f.standardStructure(t)
	f.assign(t, "emp-1", st.ID, "50000", "2026-01-01")
	f.assign(t, "emp-2", st.ID, "22000", "2026-01-01")
	run := f.marchRun(t)
	_, err := f.svc.ProcessRun(ctx, companyID, run.ID)
	require.NoError(t, err)

	mine, err := f.svc.GetMyPayslips(ctx, companyID, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, mine, "computed runs are not visible to employees")

	_, err = f.svc.ApproveRun(ctx, companyID, run.ID, "hr-1")
	require.NoError(t, err)

	select {
	case reqs := <-done:
		for _, r := range reqs {
			assert.Equal(t, notification.TypePayslipReleased, r.Type)
			require.NotNil(t, r.RecipientID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("release notifications were not dispatched")
	}

	mine, err = f.svc.GetMyPayslips(ctx, companyID, "emp-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	one, err := f.svc.GetMyPayslip(ctx, companyID, "emp-1", mine[0].ID)
	require.NoError(t, err)
	assert.Equal(t, mine[0].NetPay, one.NetPay)

	_, err = f.svc.GetMyPayslip(ctx, companyID, "emp-2", mine[0].ID)
	assert.ErrorIs(t, err, payroll.ErrPayslipNotFound)
}

func TestAssignSalary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.standardStructure(t)
	f.assign(t, "emp-1", st.ID, "40000", "2026-01-01")

	_, err := f.svc.AssignSalary(ctx, payroll.AssignSalaryRequest{
		CompanyID: companyID, EmployeeID: "emp-1", StructureID: st.ID, BasePay: dec("41000"), EffectiveFrom: "2026-01-01",
	})
	assert.ErrorIs(t, err, payroll.ErrSalaryOverlap)

	_, err = f.svc.AssignSalary(ctx, payroll.AssignSalaryRequest{
		CompanyID: companyID, EmployeeID: "emp-1", StructureID: "missing", BasePay: dec("41000"), EffectiveFrom: "2026-05-01",
	})
	assert.ErrorIs(t, err, payroll.ErrSalaryStructureMissing)

	f.assign(t, "emp-1", st.ID, "45000", "2026-05-01")

	// April resolves to the closed assignment
	slip, err := f.svc.ComputePayslip(ctx, companyID, "emp-1", 4, 2026)
	require.NoError(t, err)
	require.NotNil(t, slip)
	assert.Equal(t, 22, slip.WorkingDays)

	salaries := memory.NewEmployeeSalaryRepository(f.store)
	april, err := salaries.GetEffective(ctx, companyID, "emp-1", date("2026-04-01"), date("2026-04-30"))
	require.NoError(t, err)
	require.NotNil(t, april.EffectiveTo)
	assert.Equal(t, "2026-04-30", april.EffectiveTo.Format(utils.DateLayout))
	assert.True(t, april.BasePay.Equal(dec("40000")))
}

func TestExportRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.standardStructure(t)
	f.assign(t, "emp-1", st.ID, "50000", "2026-01-01")
	f.assign(t, "emp-2", st.ID, "22000", "2026-01-01")
	run := f.marchRun(t)

	_, err := f.svc.ExportRun(ctx, companyID, run.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidRunState)

	_, err = f.svc.ProcessRun(ctx, companyID, run.ID)
	require.NoError(t, err)

	data, err := f.svc.ExportRun(ctx, companyID, run.ID)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Employee Code", rows[0][0])
	assert.Equal(t, "E001", rows[1][0])
	assert.Equal(t, "Budi", rows[2][1])
	assert.Equal(t, "TOTAL", rows[3][0])
}
