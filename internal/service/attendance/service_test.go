package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification/mock"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/repository/memory"
	overtimeService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/overtime"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	companyID  = "company-1"
	employeeID = "emp-1"
	managerID  = "mgr-1"
)

func f64(v float64) *float64 { return &v }
func intPtr(v int) *int      { return &v }

type fixture struct {
	svc   *AttendanceServiceImpl
	store *memory.Store
	clock time.Time
	mu    sync.Mutex
}

func (f *fixture) setClock(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = t
}

func newFixture(t *testing.T, settings company.Settings, notifier notification.Service) *fixture {
	t.Helper()

	store := memory.NewStore()
	settings.CompanyID = companyID
	store.PutSettings(settings)
	store.PutEmployee(employee.Employee{
		ID:             employeeID,
		CompanyID:      companyID,
		FullName:       "Rina Wijaya",
		Status:         employee.StatusActive,
		EmploymentType: employee.EmploymentTypePermanent,
		PayType:        employee.PayTypeMonthly,
		OTMultiplier:   decimal.NewFromFloat(1.5),
		ManagerID:      func() *string { s := managerID; return &s }(),
	})

	attendanceRepo := memory.NewAttendanceRepository(store)
	otSvc := overtimeService.NewOvertimeService(memory.NewOvertimeRuleRepository(store), attendanceRepo)

	f := &fixture{store: store}
	f.svc = NewAttendanceService(
		store,
		attendanceRepo,
		memory.NewEmployeeRepository(store),
		memory.NewCompanyRepository(store),
		otSvc,
		notifier,
	).(*AttendanceServiceImpl)
	f.svc.now = func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.clock
	}
	return f
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestClockInClockOut_FullDay(t *testing.T) {
	f := newFixture(t, company.Settings{Timezone: "UTC"}, nil)
	ctx := context.Background()

	f.setClock(at(9, 0))
	in, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", in.Date)
	assert.Equal(t, attendance.StatusPresent, in.Status)
	assert.Equal(t, attendance.SourceWeb, in.Source)
	assert.Equal(t, 480, in.StandardWorkMinutes)
	require.Len(t, in.Sessions, 1)

	f.setClock(at(19, 0))
	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)
	assert.Equal(t, 600, out.WorkedMinutes)
	require.NotNil(t, out.OTMinutesCalculated)
	assert.Equal(t, 120, *out.OTMinutesCalculated)
	require.NotNil(t, out.ClockOutTime)

	status, err := f.svc.GetTodayStatus(ctx, companyID, employeeID)
	require.NoError(t, err)
	assert.False(t, status.ClockedIn)
	require.NotNil(t, status.Record)
	assert.Equal(t, 600, status.Record.WorkedMinutes)
}

func TestClockIn_SessionsAndBreak(t *testing.T) {
	f := newFixture(t, company.Settings{}, nil)
	ctx := context.Background()

	f.setClock(at(9, 0))
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)

	f.setClock(at(9, 30))
	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	f.setClock(at(12, 0))
	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)

	f.setClock(at(12, 5))
	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{CompanyID: companyID, EmployeeID: employeeID})
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)

	f.setClock(at(13, 0))
	second, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID, Source: attendance.SourceMobile})
	require.NoError(t, err)
	assert.Len(t, second.Sessions, 2)
	// Source and first clock-in time are kept from the first session.
	assert.Equal(t, attendance.SourceWeb, second.Source)
	assert.True(t, second.ClockInTime.Equal(at(9, 0)))

	status, err := f.svc.GetTodayStatus(ctx, companyID, employeeID)
	require.NoError(t, err)
	assert.True(t, status.ClockedIn)

	f.setClock(at(18, 30))
	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{CompanyID: companyID, EmployeeID: employeeID, BreakMinutes: intPtr(30)})
	require.NoError(t, err)
	assert.Equal(t, 30, out.BreakMinutes)
	// 180 + 330 - 30
	assert.Equal(t, 480, out.WorkedMinutes)
	assert.Equal(t, 0, *out.OTMinutesCalculated)
}

func TestClockOut_WithoutRecord(t *testing.T) {
	f := newFixture(t, company.Settings{}, nil)
	f.setClock(at(18, 0))

	_, err := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{CompanyID: companyID, EmployeeID: employeeID})
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
}

func TestClockOut_AppliesOvertimeRule(t *testing.T) {
	f := newFixture(t, company.Settings{}, nil)
	ctx := context.Background()

	_, err := f.svc.overtimeService.CreateRule(ctx, overtime.CreateRuleRequest{
		CompanyID:               companyID,
		RoundingIntervalMinutes: intPtr(15),
		MaxOTPerDayMinutes:      intPtr(60),
	})
	require.NoError(t, err)

	f.setClock(at(8, 0))
	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)

	f.setClock(at(17, 40))
	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)
	assert.Equal(t, 580, out.WorkedMinutes)
	assert.Equal(t, 60, *out.OTMinutesCalculated)
}

func TestClockIn_Geofence(t *testing.T) {
	settings := company.Settings{
		OfficeLatitude:      f64(-6.200000),
		OfficeLongitude:     f64(106.816666),
		AllowedRadiusMeters: f64(100),
	}
	ctx := context.Background()

	t.Run("location required", func(t *testing.T) {
		f := newFixture(t, settings, nil)
		f.setClock(at(9, 0))
		_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID})
		assert.ErrorIs(t, err, attendance.ErrLocationRequired)
	})

	t.Run("outside radius", func(t *testing.T) {
		f := newFixture(t, settings, nil)
		f.setClock(at(9, 0))
		_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{
			CompanyID: companyID, EmployeeID: employeeID,
			Latitude: f64(-6.210000), Longitude: f64(106.816666),
		})
		require.ErrorIs(t, err, attendance.ErrOutsideGeofence)

		var geoErr *attendance.GeofenceError
		require.True(t, errors.As(err, &geoErr))
		assert.InDelta(t, 1112, geoErr.DistanceMeters, 5)
		assert.Equal(t, 100.0, geoErr.RadiusMeters)
	})

	t.Run("inside radius", func(t *testing.T) {
		f := newFixture(t, settings, nil)
		f.setClock(at(9, 0))
		resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{
			CompanyID: companyID, EmployeeID: employeeID,
			Latitude: f64(-6.200300), Longitude: f64(106.816666),
		})
		require.NoError(t, err)
		assert.Len(t, resp.Sessions, 1)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		f := newFixture(t, settings, nil)
		f.setClock(at(9, 0))
		_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{
			CompanyID: companyID, EmployeeID: employeeID,
			Latitude: f64(120), Longitude: f64(106.816666),
		})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, attendance.ErrOutsideGeofence)
	})
}

func TestClockIn_InactiveEmployee(t *testing.T) {
	f := newFixture(t, company.Settings{}, nil)
	f.store.PutEmployee(employee.Employee{ID: "emp-2", CompanyID: companyID, Status: employee.StatusInactive})
	f.setClock(at(9, 0))

	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{CompanyID: companyID, EmployeeID: "emp-2"})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
}

func TestClockIn_UsesTenantTimezone(t *testing.T) {
	f := newFixture(t, company.Settings{Timezone: "Asia/Jakarta"}, nil)
	// 20:00 UTC is 03:00 the next day in Jakarta.
	f.setClock(time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC))

	resp, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", resp.Date)
}

func TestClockIn_ConcurrentOnlyOneSucceeds(t *testing.T) {
	f := newFixture(t, company.Settings{}, nil)
	f.setClock(at(9, 0))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, attendance.ErrAlreadyClockedIn):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 9, conflicts)
}

func TestApproveOvertime(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockService(ctrl)
	notified := make(chan notification.CreateNotificationRequest, 1)
	notifier.EXPECT().
		QueueBulkNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
			notified <- reqs[0]
			return nil
		})

	f := newFixture(t, company.Settings{}, notifier)
	ctx := context.Background()

	_, err := f.svc.overtimeService.CreateRule(ctx, overtime.CreateRuleRequest{CompanyID: companyID, MaxOTPerMonthMinutes: intPtr(100)})
	require.NoError(t, err)

	f.setClock(at(9, 0))
	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)
	f.setClock(at(19, 0))
	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)

	manager := user.Actor{EmployeeID: managerID, CompanyID: companyID, Role: user.RoleManager}

	t.Run("other manager is forbidden", func(t *testing.T) {
		_, err := f.svc.ApproveOvertime(ctx, attendance.ApproveOvertimeRequest{
			CompanyID: companyID, RecordID: out.ID, ApprovedMinutes: 60,
			Approver: user.Actor{EmployeeID: "mgr-2", CompanyID: companyID, Role: user.RoleManager},
		})
		assert.ErrorIs(t, err, user.ErrForbidden)
	})

	t.Run("cannot approve more than calculated", func(t *testing.T) {
		_, err := f.svc.ApproveOvertime(ctx, attendance.ApproveOvertimeRequest{
			CompanyID: companyID, RecordID: out.ID, ApprovedMinutes: 121, Approver: manager,
		})
		assert.ErrorIs(t, err, attendance.ErrInvalidApprovedHours)
	})

	t.Run("direct manager approves with advisory limit", func(t *testing.T) {
		resp, err := f.svc.ApproveOvertime(ctx, attendance.ApproveOvertimeRequest{
			CompanyID: companyID, RecordID: out.ID, ApprovedMinutes: 120, Approver: manager,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Record.OTMinutesApproved)
		assert.Equal(t, 120, *resp.Record.OTMinutesApproved)
		assert.True(t, resp.MonthlyLimit.Exceeded)
		assert.Equal(t, 100, *resp.MonthlyLimit.LimitMinutes)

		select {
		case req := <-notified:
			assert.Equal(t, notification.TypeOvertimeApproved, req.Type)
			assert.Equal(t, employeeID, *req.RecipientID)
		case <-time.After(2 * time.Second):
			t.Fatal("overtime approval was not notified")
		}
	})
}

func TestApproveOvertime_NothingToApprove(t *testing.T) {
	f := newFixture(t, company.Settings{}, nil)
	ctx := context.Background()

	f.setClock(at(9, 0))
	in, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{CompanyID: companyID, EmployeeID: employeeID})
	require.NoError(t, err)

	_, err = f.svc.ApproveOvertime(ctx, attendance.ApproveOvertimeRequest{
		CompanyID: companyID, RecordID: in.ID, ApprovedMinutes: 10,
		Approver: user.Actor{EmployeeID: "hr-1", CompanyID: companyID, Role: user.RoleHR},
	})
	assert.ErrorIs(t, err, attendance.ErrNoOvertimeToApprove)
}
