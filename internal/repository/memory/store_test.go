package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	store := NewStore()
	runs := NewPayrollRunRepository(store)
	slips := NewPayslipRepository(store)
	ctx := context.Background()

	run := &payroll.PayrollRun{CompanyID: "c1", Month: 1, Year: 2026, Status: payroll.RunStatusDraft}
	require.NoError(t, runs.Create(ctx, run))

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, runs.Transition(ctx, "c1", run.ID, payroll.RunStatusDraft, payroll.RunStatusProcessing, time.Now(), nil))
		require.NoError(t, slips.Create(ctx, &payroll.Payslip{RunID: run.ID, CompanyID: "c1", EmployeeID: "e1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := runs.GetByID(ctx, "c1", run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusDraft, got.Status)

	list, err := slips.ListByRun(ctx, "c1", run.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWithinTransaction_RollbackKeepsWritesFromOutside(t *testing.T) {
	store := NewStore()
	runs := NewPayrollRunRepository(store)
	notifications := NewNotificationRepository(store)
	ctx := context.Background()

	run := &payroll.PayrollRun{CompanyID: "c1", Month: 2, Year: 2026, Status: payroll.RunStatusDraft}
	started := make(chan struct{})
	release := make(chan struct{})
	txErr := make(chan error, 1)
	go func() {
		txErr <- store.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := runs.Create(ctx, run); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	written := make(chan error, 1)
	go func() {
		written <- notifications.Create(ctx, &notification.Notification{
			CompanyID:      "c1",
			RecipientRoles: []user.Role{user.RoleHR},
			Type:           notification.TypeLeaveRequested,
			Title:          "Leave requested",
		})
	}()

	select {
	case <-written:
		t.Fatal("write outside the transaction finished while it was open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-txErr)
	require.NoError(t, <-written)

	list, err := notifications.ListForRecipient(ctx, "c1", "", user.RoleHR, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = runs.GetByID(ctx, "c1", run.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRunNotFound)
}

func TestWithinTransaction_ReadsOutsideWaitForCommit(t *testing.T) {
	store := NewStore()
	runs := NewPayrollRunRepository(store)
	ctx := context.Background()

	run := &payroll.PayrollRun{CompanyID: "c1", Month: 3, Year: 2026, Status: payroll.RunStatusDraft}
	require.NoError(t, runs.Create(ctx, run))

	started := make(chan struct{})
	release := make(chan struct{})
	txErr := make(chan error, 1)
	go func() {
		txErr <- store.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := runs.Transition(ctx, "c1", run.ID, payroll.RunStatusDraft, payroll.RunStatusProcessing, time.Now(), nil); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	seen := make(chan payroll.RunStatus, 1)
	go func() {
		got, err := runs.GetByID(ctx, "c1", run.ID)
		if err != nil {
			seen <- ""
			return
		}
		seen <- got.Status
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)
	require.Error(t, <-txErr)
	assert.Equal(t, payroll.RunStatusDraft, <-seen)
}

func TestWithinTransaction_NestedJoinsOuter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	calls := 0
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		return store.WithinTransaction(ctx, func(ctx context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestLeaveBalance_AtomicCounters(t *testing.T) {
	store := NewStore()
	store.PutLeaveType(leave.LeaveType{ID: "annual", CompanyID: "c1", Code: "AL", Name: "Annual", IsActive: true, IsPaid: true})
	repo := NewLeaveBalanceRepository(store)
	ctx := context.Background()

	b, err := repo.GetOrCreateForUpdate(ctx, "c1", "e1", "annual", 2026)
	require.NoError(t, err)
	assert.Equal(t, "AL", b.LeaveTypeCode)

	again, err := repo.GetOrCreateForUpdate(ctx, "c1", "e1", "annual", 2026)
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.ID)

	_, err = repo.AddTotal(ctx, b.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, repo.AddPending(ctx, b.ID, decimal.NewFromInt(3)))
	require.NoError(t, repo.MovePendingToUsed(ctx, b.ID, decimal.NewFromInt(3)))

	got, err := repo.Get(ctx, "c1", "e1", "annual", 2026)
	require.NoError(t, err)
	assert.True(t, got.PendingDays.IsZero())
	assert.True(t, got.UsedDays.Equal(decimal.NewFromInt(3)))
	assert.True(t, got.Available().Equal(decimal.NewFromInt(7)))
}

func TestEmployeeSalary_GetEffectivePicksLatestOverlap(t *testing.T) {
	store := NewStore()
	repo := NewEmployeeSalaryRepository(store)
	ctx := context.Background()

	d := func(s string) time.Time {
		v, _ := time.Parse("2006-01-02", s)
		return v
	}
	jan14 := d("2026-01-14")
	require.NoError(t, repo.Create(ctx, &payroll.EmployeeSalary{CompanyID: "c1", EmployeeID: "e1", BasePay: decimal.NewFromInt(1000), EffectiveFrom: d("2025-06-01"), EffectiveTo: &jan14}))
	require.NoError(t, repo.Create(ctx, &payroll.EmployeeSalary{CompanyID: "c1", EmployeeID: "e1", BasePay: decimal.NewFromInt(2000), EffectiveFrom: d("2026-01-15")}))

	got, err := repo.GetEffective(ctx, "c1", "e1", d("2026-01-01"), d("2026-01-31"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.BasePay.Equal(decimal.NewFromInt(2000)))

	none, err := repo.GetEffective(ctx, "c1", "e1", d("2025-01-01"), d("2025-01-31"))
	require.NoError(t, err)
	assert.Nil(t, none)
}
