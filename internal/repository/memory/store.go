// Package memory keeps every repository in process, guarded by a mutex. It
// backs the "memory" storage driver and the service tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/google/uuid"
)

type txKey struct{}

// txState marks a context as belonging to an open transaction. done is set
// before the transaction releases txMu, so goroutines that inherited the
// context fall back to taking txMu themselves.
type txState struct {
	done atomic.Bool
}

type data struct {
	settings       map[string]company.Settings
	holidays       map[string]company.Holiday
	employees      map[string]employee.Employee
	records        map[string]attendance.AttendanceRecord
	otRules        map[string]overtime.OvertimeRule
	leaveTypes     map[string]leave.LeaveType
	balances       map[string]leave.LeaveBalance
	requests       map[string]leave.LeaveRequest
	accrualRules   map[string]leave.AccrualRule
	accrualRuns    map[string]leave.AccrualRun
	accrualEntries []leave.AccrualEntry
	structures     map[string]payroll.SalaryStructure
	salaries       map[string]payroll.EmployeeSalary
	runs           map[string]payroll.PayrollRun
	payslips       map[string]payroll.Payslip
	notifications  []*notification.Notification
}

// Store holds all tables. Transactions are serialized and rolled back by
// restoring a snapshot taken when they began. Repository calls made outside a
// transaction also take txMu, so a rollback only ever discards the
// transaction's own writes and no reader sees uncommitted rows.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	d    data
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		d: data{
			settings:     make(map[string]company.Settings),
			holidays:     make(map[string]company.Holiday),
			employees:    make(map[string]employee.Employee),
			records:      make(map[string]attendance.AttendanceRecord),
			otRules:      make(map[string]overtime.OvertimeRule),
			leaveTypes:   make(map[string]leave.LeaveType),
			balances:     make(map[string]leave.LeaveBalance),
			requests:     make(map[string]leave.LeaveRequest),
			accrualRules: make(map[string]leave.AccrualRule),
			accrualRuns:  make(map[string]leave.AccrualRun),
			structures:   make(map[string]payroll.SalaryStructure),
			salaries:     make(map[string]payroll.EmployeeSalary),
			runs:         make(map[string]payroll.PayrollRun),
			payslips:     make(map[string]payroll.Payslip),
		},
		now: time.Now,
	}
}

// WithinTransaction implements database.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	state := &txState{}
	defer state.done.Store(true)

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, state))
}

func inTx(ctx context.Context) bool {
	state, ok := ctx.Value(txKey{}).(*txState)
	return ok && !state.done.Load()
}

// lock takes the write lock for one repository call and returns its release.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) rlock(ctx context.Context) func() {
	if inTx(ctx) {
		s.mu.RLock()
		return s.mu.RUnlock
	}
	s.txMu.Lock()
	s.mu.RLock()
	return func() {
		s.mu.RUnlock()
		s.txMu.Unlock()
	}
}

func (s *Store) snapshot() data {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make(map[string]attendance.AttendanceRecord, len(s.d.records))
	for k, v := range s.d.records {
		v.Sessions = append([]attendance.AttendanceSession(nil), v.Sessions...)
		records[k] = v
	}

	return data{
		settings:       cloneMap(s.d.settings),
		holidays:       cloneMap(s.d.holidays),
		employees:      cloneMap(s.d.employees),
		records:        records,
		otRules:        cloneMap(s.d.otRules),
		leaveTypes:     cloneMap(s.d.leaveTypes),
		balances:       cloneMap(s.d.balances),
		requests:       cloneMap(s.d.requests),
		accrualRules:   cloneMap(s.d.accrualRules),
		accrualRuns:    cloneMap(s.d.accrualRuns),
		accrualEntries: append([]leave.AccrualEntry(nil), s.d.accrualEntries...),
		structures:     cloneMap(s.d.structures),
		salaries:       cloneMap(s.d.salaries),
		runs:           cloneMap(s.d.runs),
		payslips:       cloneMap(s.d.payslips),
		notifications:  append([]*notification.Notification(nil), s.d.notifications...),
	}
}

func (s *Store) restore(d data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d = d
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ========================================
// Seeding for the directory and tenant config, which this engine only reads.
// ========================================

func (s *Store) PutSettings(settings company.Settings) {
	defer s.lock(context.Background())()
	s.d.settings[settings.CompanyID] = settings
}

func (s *Store) PutHoliday(h company.Holiday) {
	defer s.lock(context.Background())()
	if h.ID == "" {
		h.ID = newID()
	}
	s.d.holidays[h.ID] = h
}

func (s *Store) PutEmployee(e employee.Employee) {
	defer s.lock(context.Background())()
	s.d.employees[e.ID] = e
}

func (s *Store) PutLeaveType(t leave.LeaveType) {
	defer s.lock(context.Background())()
	if t.ID == "" {
		t.ID = newID()
	}
	s.d.leaveTypes[t.ID] = t
}

func (s *Store) PutAccrualRule(r leave.AccrualRule) {
	defer s.lock(context.Background())()
	if r.ID == "" {
		r.ID = newID()
	}
	s.d.accrualRules[r.ID] = r
}

// PutBalance inserts or replaces the balance for its natural key.
func (s *Store) PutBalance(b leave.LeaveBalance) {
	defer s.lock(context.Background())()
	for id, existing := range s.d.balances {
		if balanceKey(existing) == balanceKey(b) {
			b.ID = id
		}
	}
	if b.ID == "" {
		b.ID = newID()
	}
	s.d.balances[b.ID] = b
}

func balanceKey(b leave.LeaveBalance) string {
	return fmt.Sprintf("%s|%s|%s|%d", b.CompanyID, b.EmployeeID, b.LeaveTypeID, b.Year)
}
