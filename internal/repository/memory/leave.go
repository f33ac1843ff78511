package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type leaveTypeRepository struct {
	s *Store
}

func NewLeaveTypeRepository(s *Store) leave.LeaveTypeRepository {
	return &leaveTypeRepository{s: s}
}

func (r *leaveTypeRepository) GetByID(ctx context.Context, companyID, id string) (leave.LeaveType, error) {
	defer r.s.rlock(ctx)()

	t, ok := r.s.d.leaveTypes[id]
	if !ok || t.CompanyID != companyID {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return t, nil
}

type leaveBalanceRepository struct {
	s *Store
}

func NewLeaveBalanceRepository(s *Store) leave.LeaveBalanceRepository {
	return &leaveBalanceRepository{s: s}
}

// withJoin expects the caller to hold s.mu.
func (r *leaveBalanceRepository) withJoin(b leave.LeaveBalance) *leave.LeaveBalance {
	if t, ok := r.s.d.leaveTypes[b.LeaveTypeID]; ok {
		b.LeaveTypeCode = t.Code
		b.LeaveTypeName = t.Name
	}
	return &b
}

func (r *leaveBalanceRepository) findLocked(companyID, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, bool) {
	for _, b := range r.s.d.balances {
		if b.CompanyID == companyID && b.EmployeeID == employeeID && b.LeaveTypeID == leaveTypeID && b.Year == year {
			return b, true
		}
	}
	return leave.LeaveBalance{}, false
}

func (r *leaveBalanceRepository) Get(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	defer r.s.rlock(ctx)()

	b, ok := r.findLocked(companyID, employeeID, leaveTypeID, year)
	if !ok {
		return nil, nil
	}
	return r.withJoin(b), nil
}

// GetForUpdate relies on the store serializing transactions.
func (r *leaveBalanceRepository) GetForUpdate(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	return r.Get(ctx, companyID, employeeID, leaveTypeID, year)
}

func (r *leaveBalanceRepository) GetOrCreateForUpdate(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	defer r.s.lock(ctx)()

	if b, ok := r.findLocked(companyID, employeeID, leaveTypeID, year); ok {
		return r.withJoin(b), nil
	}

	now := r.s.now()
	b := leave.LeaveBalance{
		ID:          newID(),
		CompanyID:   companyID,
		EmployeeID:  employeeID,
		LeaveTypeID: leaveTypeID,
		Year:        year,
		TotalDays:   decimal.Zero,
		UsedDays:    decimal.Zero,
		PendingDays: decimal.Zero,
		CarriedOver: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.d.balances[b.ID] = b
	return r.withJoin(b), nil
}

func (r *leaveBalanceRepository) ListByEmployeeYear(ctx context.Context, companyID, employeeID string, year int) ([]leave.LeaveBalance, error) {
	defer r.s.rlock(ctx)()

	var out []leave.LeaveBalance
	for _, b := range r.s.d.balances {
		if b.CompanyID == companyID && b.EmployeeID == employeeID && b.Year == year {
			out = append(out, *r.withJoin(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveTypeCode < out[j].LeaveTypeCode })
	return out, nil
}

func (r *leaveBalanceRepository) mutate(ctx context.Context, balanceID string, fn func(b *leave.LeaveBalance)) (*leave.LeaveBalance, error) {
	defer r.s.lock(ctx)()

	b, ok := r.s.d.balances[balanceID]
	if !ok {
		return nil, leave.ErrBalanceNotFound
	}
	fn(&b)
	b.UpdatedAt = r.s.now()
	r.s.d.balances[balanceID] = b
	return r.withJoin(b), nil
}

func (r *leaveBalanceRepository) AddPending(ctx context.Context, balanceID string, days decimal.Decimal) error {
	_, err := r.mutate(ctx, balanceID, func(b *leave.LeaveBalance) {
		b.PendingDays = b.PendingDays.Add(days)
	})
	return err
}

func (r *leaveBalanceRepository) RemovePending(ctx context.Context, balanceID string, days decimal.Decimal) error {
	_, err := r.mutate(ctx, balanceID, func(b *leave.LeaveBalance) {
		b.PendingDays = decimal.Max(decimal.Zero, b.PendingDays.Sub(days))
	})
	return err
}

func (r *leaveBalanceRepository) MovePendingToUsed(ctx context.Context, balanceID string, days decimal.Decimal) error {
	_, err := r.mutate(ctx, balanceID, func(b *leave.LeaveBalance) {
		b.PendingDays = decimal.Max(decimal.Zero, b.PendingDays.Sub(days))
		b.UsedDays = b.UsedDays.Add(days)
	})
	return err
}

func (r *leaveBalanceRepository) AddTotal(ctx context.Context, balanceID string, days decimal.Decimal) (*leave.LeaveBalance, error) {
	return r.mutate(ctx, balanceID, func(b *leave.LeaveBalance) {
		b.TotalDays = b.TotalDays.Add(days)
	})
}

type leaveRequestRepository struct {
	s *Store
}

func NewLeaveRequestRepository(s *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{s: s}
}

func (r *leaveRequestRepository) Create(ctx context.Context, req *leave.LeaveRequest) error {
	defer r.s.lock(ctx)()

	if req.ID == "" {
		req.ID = newID()
	}
	now := r.s.now()
	req.CreatedAt, req.UpdatedAt = now, now
	r.s.d.requests[req.ID] = *req
	return nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	defer r.s.rlock(ctx)()

	req, ok := r.s.d.requests[id]
	if !ok || req.CompanyID != companyID {
		return nil, leave.ErrLeaveRequestNotFound
	}
	if t, ok := r.s.d.leaveTypes[req.LeaveTypeID]; ok {
		req.LeaveTypeIsPaid = t.IsPaid
	}
	return &req, nil
}

func (r *leaveRequestRepository) LockByID(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	return r.GetByID(ctx, companyID, id)
}

// LockEmployee is a no-op, transactions are already serialized.
func (r *leaveRequestRepository) LockEmployee(ctx context.Context, companyID, employeeID string) error {
	return nil
}

func (r *leaveRequestRepository) UpdateStatus(ctx context.Context, req *leave.LeaveRequest) error {
	defer r.s.lock(ctx)()

	stored, ok := r.s.d.requests[req.ID]
	if !ok || stored.CompanyID != req.CompanyID {
		return leave.ErrLeaveRequestNotFound
	}
	stored.Status = req.Status
	stored.ApprovedBy = req.ApprovedBy
	stored.ApprovedAt = req.ApprovedAt
	stored.RejectionReason = req.RejectionReason
	stored.CancelledAt = req.CancelledAt
	stored.UpdatedAt = r.s.now()
	req.UpdatedAt = stored.UpdatedAt
	r.s.d.requests[req.ID] = stored
	return nil
}

func overlaps(start, end, from, to time.Time) bool {
	return !start.After(to) && !end.Before(from)
}

func (r *leaveRequestRepository) HasOverlap(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error) {
	defer r.s.rlock(ctx)()

	for _, req := range r.s.d.requests {
		if req.CompanyID != companyID || req.EmployeeID != employeeID {
			continue
		}
		if req.Status != leave.RequestStatusPending && req.Status != leave.RequestStatusApproved {
			continue
		}
		if overlaps(req.StartDate, req.EndDate, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRequestRepository) ListApprovedOverlapping(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	defer r.s.rlock(ctx)()

	var out []leave.LeaveRequest
	for _, req := range r.s.d.requests {
		if req.CompanyID != companyID || req.EmployeeID != employeeID || req.Status != leave.RequestStatusApproved {
			continue
		}
		if !overlaps(req.StartDate, req.EndDate, from, to) {
			continue
		}
		if t, ok := r.s.d.leaveTypes[req.LeaveTypeID]; ok {
			req.LeaveTypeIsPaid = t.IsPaid
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

type accrualRuleRepository struct {
	s *Store
}

func NewAccrualRuleRepository(s *Store) leave.AccrualRuleRepository {
	return &accrualRuleRepository{s: s}
}

func (r *accrualRuleRepository) ListActive(ctx context.Context, companyID string, leaveTypeIDs []string) ([]leave.AccrualRule, error) {
	defer r.s.rlock(ctx)()

	var out []leave.AccrualRule
	for _, rule := range r.s.d.accrualRules {
		if rule.CompanyID != companyID || !rule.IsActive {
			continue
		}
		t, ok := r.s.d.leaveTypes[rule.LeaveTypeID]
		if !ok || !t.IsActive {
			continue
		}
		if len(leaveTypeIDs) > 0 && !slices.Contains(leaveTypeIDs, rule.LeaveTypeID) {
			continue
		}
		rule.LeaveTypeCode = t.Code
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type accrualRunRepository struct {
	s *Store
}

func NewAccrualRunRepository(s *Store) leave.AccrualRunRepository {
	return &accrualRunRepository{s: s}
}

func (r *accrualRunRepository) GetByPeriod(ctx context.Context, companyID string, month, year int) (*leave.AccrualRun, error) {
	defer r.s.rlock(ctx)()

	for _, run := range r.s.d.accrualRuns {
		if run.CompanyID == companyID && run.Month == month && run.Year == year {
			out := run
			return &out, nil
		}
	}
	return nil, nil
}

func (r *accrualRunRepository) GetByID(ctx context.Context, companyID, id string) (*leave.AccrualRun, error) {
	defer r.s.rlock(ctx)()

	run, ok := r.s.d.accrualRuns[id]
	if !ok || run.CompanyID != companyID {
		return nil, leave.ErrAccrualRunNotFound
	}
	return &run, nil
}

func (r *accrualRunRepository) Create(ctx context.Context, run *leave.AccrualRun) error {
	defer r.s.lock(ctx)()

	for _, existing := range r.s.d.accrualRuns {
		if existing.CompanyID == run.CompanyID && existing.Month == run.Month && existing.Year == run.Year {
			return leave.ErrAccrualAlreadyCompleted
		}
	}
	if run.ID == "" {
		run.ID = newID()
	}
	run.CreatedAt = r.s.now()
	r.s.d.accrualRuns[run.ID] = *run
	return nil
}

func (r *accrualRunRepository) Update(ctx context.Context, run *leave.AccrualRun) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.d.accrualRuns[run.ID]; !ok {
		return leave.ErrAccrualRunNotFound
	}
	r.s.d.accrualRuns[run.ID] = *run
	return nil
}

func (r *accrualRunRepository) CreateEntry(ctx context.Context, entry *leave.AccrualEntry) error {
	defer r.s.lock(ctx)()

	if entry.ID == "" {
		entry.ID = newID()
	}
	entry.CreatedAt = r.s.now()
	r.s.d.accrualEntries = append(r.s.d.accrualEntries, *entry)
	return nil
}

func (r *accrualRunRepository) ListEntries(ctx context.Context, runID string) ([]leave.AccrualEntry, error) {
	defer r.s.rlock(ctx)()

	var out []leave.AccrualEntry
	for _, e := range r.s.d.accrualEntries {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}
