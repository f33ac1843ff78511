package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
)

type attendanceRepository struct {
	s *Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

func copyRecord(rec attendance.AttendanceRecord) *attendance.AttendanceRecord {
	rec.Sessions = append([]attendance.AttendanceSession(nil), rec.Sessions...)
	sort.Slice(rec.Sessions, func(i, j int) bool { return rec.Sessions[i].InTime.Before(rec.Sessions[j].InTime) })
	return &rec
}

// findLocked expects the caller to hold s.mu.
func (r *attendanceRepository) findLocked(companyID, employeeID string, date time.Time) (string, bool) {
	for id, rec := range r.s.d.records {
		if rec.CompanyID == companyID && rec.EmployeeID == employeeID && rec.Date.Equal(date) {
			return id, true
		}
	}
	return "", false
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	defer r.s.rlock(ctx)()

	id, ok := r.findLocked(companyID, employeeID, date)
	if !ok {
		return nil, nil
	}
	return copyRecord(r.s.d.records[id]), nil
}

// LockByEmployeeAndDate relies on the store serializing transactions.
func (r *attendanceRepository) LockByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	return r.GetByEmployeeAndDate(ctx, companyID, employeeID, date)
}

func (r *attendanceRepository) GetByID(ctx context.Context, companyID, id string) (*attendance.AttendanceRecord, error) {
	defer r.s.rlock(ctx)()

	rec, ok := r.s.d.records[id]
	if !ok || rec.CompanyID != companyID {
		return nil, attendance.ErrAttendanceNotFound
	}
	return copyRecord(rec), nil
}

func (r *attendanceRepository) Create(ctx context.Context, record *attendance.AttendanceRecord) error {
	defer r.s.lock(ctx)()

	if _, ok := r.findLocked(record.CompanyID, record.EmployeeID, record.Date); ok {
		return attendance.ErrAlreadyClockedIn
	}
	if record.ID == "" {
		record.ID = newID()
	}
	now := r.s.now()
	record.CreatedAt, record.UpdatedAt = now, now
	for i := range record.Sessions {
		if record.Sessions[i].ID == "" {
			record.Sessions[i].ID = newID()
		}
		record.Sessions[i].RecordID = record.ID
		record.Sessions[i].CreatedAt = now
	}
	r.s.d.records[record.ID] = *copyRecord(*record)
	return nil
}

func (r *attendanceRepository) Update(ctx context.Context, record *attendance.AttendanceRecord) error {
	defer r.s.lock(ctx)()

	stored, ok := r.s.d.records[record.ID]
	if !ok || stored.CompanyID != record.CompanyID {
		return attendance.ErrAttendanceNotFound
	}
	record.UpdatedAt = r.s.now()
	updated := *record
	// Sessions are owned by CreateSession and CloseSession.
	updated.Sessions = stored.Sessions
	r.s.d.records[record.ID] = updated
	return nil
}

func (r *attendanceRepository) CreateSession(ctx context.Context, session *attendance.AttendanceSession) error {
	defer r.s.lock(ctx)()

	rec, ok := r.s.d.records[session.RecordID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if rec.OpenSession() != nil {
		return attendance.ErrAlreadyClockedIn
	}
	if session.ID == "" {
		session.ID = newID()
	}
	session.CreatedAt = r.s.now()
	rec.Sessions = append(append([]attendance.AttendanceSession(nil), rec.Sessions...), *session)
	r.s.d.records[rec.ID] = rec
	return nil
}

func (r *attendanceRepository) CloseSession(ctx context.Context, session *attendance.AttendanceSession) error {
	defer r.s.lock(ctx)()

	rec, ok := r.s.d.records[session.RecordID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	sessions := append([]attendance.AttendanceSession(nil), rec.Sessions...)
	for i := range sessions {
		if sessions[i].ID != session.ID {
			continue
		}
		if sessions[i].OutTime != nil {
			return attendance.ErrNotClockedIn
		}
		sessions[i].OutTime = session.OutTime
		sessions[i].SessionMinutes = session.SessionMinutes
		rec.Sessions = sessions
		r.s.d.records[rec.ID] = rec
		return nil
	}
	return attendance.ErrNotClockedIn
}

func (r *attendanceRepository) UpsertLeaveDay(ctx context.Context, record *attendance.AttendanceRecord) error {
	defer r.s.lock(ctx)()

	now := r.s.now()
	if id, ok := r.findLocked(record.CompanyID, record.EmployeeID, record.Date); ok {
		existing := r.s.d.records[id]
		existing.Status = record.Status
		existing.UpdatedAt = now
		r.s.d.records[id] = existing
		record.ID = id
		return nil
	}

	if record.ID == "" {
		record.ID = newID()
	}
	record.CreatedAt, record.UpdatedAt = now, now
	r.s.d.records[record.ID] = *copyRecord(*record)
	return nil
}

func (r *attendanceRepository) ListByEmployeeAndRange(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	defer r.s.rlock(ctx)()

	var out []attendance.AttendanceRecord
	for _, rec := range r.s.d.records {
		if rec.CompanyID != companyID || rec.EmployeeID != employeeID {
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, *copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *attendanceRepository) SumApprovedOTMinutes(ctx context.Context, companyID, employeeID string, from, to time.Time) (int, error) {
	defer r.s.rlock(ctx)()

	total := 0
	for _, rec := range r.s.d.records {
		if rec.CompanyID != companyID || rec.EmployeeID != employeeID || rec.OTMinutesApproved == nil {
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		total += *rec.OTMinutesApproved
	}
	return total, nil
}
