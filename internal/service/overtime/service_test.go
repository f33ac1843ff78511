package overtime

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

type countingAttendanceRepo struct {
	attendance.AttendanceRepository
	sumCalls int
}

func (r *countingAttendanceRepo) SumApprovedOTMinutes(ctx context.Context, companyID, employeeID string, from, to time.Time) (int, error) {
	r.sumCalls++
	return r.AttendanceRepository.SumApprovedOTMinutes(ctx, companyID, employeeID, from, to)
}

func newTestService(t *testing.T) (*OvertimeServiceImpl, *memory.Store, *countingAttendanceRepo) {
	t.Helper()
	store := memory.NewStore()
	att := &countingAttendanceRepo{AttendanceRepository: memory.NewAttendanceRepository(store)}
	svc := NewOvertimeService(memory.NewOvertimeRuleRepository(store), att).(*OvertimeServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC) }
	return svc, store, att
}

func TestGetOTRule_Resolution(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	none, err := svc.GetOTRule(ctx, "c1", employee.EmploymentTypeContract)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = svc.CreateRule(ctx, overtime.CreateRuleRequest{CompanyID: "c1", DailyThresholdMinutes: intPtr(480)})
	require.NoError(t, err)

	contract := employee.EmploymentTypeContract
	_, err = svc.CreateRule(ctx, overtime.CreateRuleRequest{CompanyID: "c1", EmploymentType: &contract, DailyThresholdMinutes: intPtr(420)})
	require.NoError(t, err)

	exact, err := svc.GetOTRule(ctx, "c1", employee.EmploymentTypeContract)
	require.NoError(t, err)
	require.NotNil(t, exact)
	assert.Equal(t, 420, *exact.DailyThresholdMinutes)

	fallback, err := svc.GetOTRule(ctx, "c1", employee.EmploymentTypePermanent)
	require.NoError(t, err)
	require.NotNil(t, fallback)
	assert.Nil(t, fallback.EmploymentType)
	assert.Equal(t, 480, *fallback.DailyThresholdMinutes)

	other, err := svc.GetOTRule(ctx, "c2", employee.EmploymentTypeContract)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestCreateRule_DuplicateActive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, overtime.CreateRuleRequest{CompanyID: "c1"})
	require.NoError(t, err)
	_, err = svc.CreateRule(ctx, overtime.CreateRuleRequest{CompanyID: "c1"})
	assert.ErrorIs(t, err, overtime.ErrOvertimeRuleExists)

	_, err = svc.CreateRule(ctx, overtime.CreateRuleRequest{CompanyID: "c1", RoundingIntervalMinutes: intPtr(0)})
	assert.Error(t, err)

	rules, err := svc.ListRules(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestCheckMonthlyOTLimit(t *testing.T) {
	svc, store, att := newTestService(t)
	ctx := context.Background()
	repo := memory.NewAttendanceRepository(store)

	for day, approved := range map[int]int{2: 300, 10: 200} {
		rec := &attendance.AttendanceRecord{
			CompanyID:         "c1",
			EmployeeID:        "e1",
			Date:              time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
			Status:            attendance.StatusPresent,
			OTMinutesApproved: intPtr(approved),
		}
		require.NoError(t, repo.Create(ctx, rec))
	}
	// Previous month does not count.
	require.NoError(t, repo.Create(ctx, &attendance.AttendanceRecord{
		CompanyID: "c1", EmployeeID: "e1", Date: time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), OTMinutesApproved: intPtr(900),
	}))

	t.Run("no monthly cap issues no query", func(t *testing.T) {
		res, err := svc.CheckMonthlyOTLimit(ctx, "c1", "e1", &overtime.OvertimeRule{}, time.Time{}, 1000)
		require.NoError(t, err)
		assert.False(t, res.Exceeded)
		assert.Equal(t, 0, att.sumCalls)

		res, err = svc.CheckMonthlyOTLimit(ctx, "c1", "e1", nil, time.Time{}, 1000)
		require.NoError(t, err)
		assert.False(t, res.Exceeded)
		assert.Equal(t, 0, att.sumCalls)
	})

	rule := &overtime.OvertimeRule{MaxOTPerMonthMinutes: intPtr(600)}

	t.Run("at the cap is not exceeded", func(t *testing.T) {
		res, err := svc.CheckMonthlyOTLimit(ctx, "c1", "e1", rule, time.Time{}, 100)
		require.NoError(t, err)
		assert.False(t, res.Exceeded)
		assert.Equal(t, 500, res.ApprovedMinutes)
		assert.Equal(t, 600, *res.LimitMinutes)
	})

	t.Run("over the cap", func(t *testing.T) {
		res, err := svc.CheckMonthlyOTLimit(ctx, "c1", "e1", rule, time.Time{}, 101)
		require.NoError(t, err)
		assert.True(t, res.Exceeded)
	})

	t.Run("sums the month of the work date", func(t *testing.T) {
		res, err := svc.CheckMonthlyOTLimit(ctx, "c1", "e1", rule, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), 0)
		require.NoError(t, err)
		assert.Equal(t, 900, res.ApprovedMinutes)
		assert.True(t, res.Exceeded)

		res, err = svc.CheckMonthlyOTLimit(ctx, "c1", "e1", rule, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 100)
		require.NoError(t, err)
		assert.Equal(t, 500, res.ApprovedMinutes)
		assert.False(t, res.Exceeded)
	})
}
