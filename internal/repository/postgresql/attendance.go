package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, company_id, employee_id, date, clock_in_time, clock_out_time,
	break_minutes, worked_minutes, ot_minutes_calculated, ot_minutes_approved,
	status, standard_work_minutes, source,
	clock_in_latitude, clock_in_longitude, clock_out_latitude, clock_out_longitude,
	created_at, updated_at
`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (*attendance.AttendanceRecord, error) {
	var att attendance.AttendanceRecord
	err := row.Scan(
		&att.ID, &att.CompanyID, &att.EmployeeID, &att.Date, &att.ClockInTime, &att.ClockOutTime,
		&att.BreakMinutes, &att.WorkedMinutes, &att.OTMinutesCalculated, &att.OTMinutesApproved,
		&att.Status, &att.StandardWorkMinutes, &att.Source,
		&att.ClockInLatitude, &att.ClockInLongitude, &att.ClockOutLatitude, &att.ClockOutLongitude,
		&att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// loadSessions fills Sessions for every record in one query.
func (a *attendanceRepository) loadSessions(ctx context.Context, records ...*attendance.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	q := GetQuerier(ctx, a.db)

	ids := make([]string, len(records))
	byID := make(map[string]*attendance.AttendanceRecord, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		byID[rec.ID] = rec
	}

	rows, err := q.Query(ctx, `
		SELECT id, record_id, in_time, out_time, session_minutes, created_at
		FROM attendance_sessions
		WHERE record_id = ANY($1)
		ORDER BY in_time
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load attendance sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s attendance.AttendanceSession
		if err := rows.Scan(&s.ID, &s.RecordID, &s.InTime, &s.OutTime, &s.SessionMinutes, &s.CreatedAt); err != nil {
			return err
		}
		if rec, ok := byID[s.RecordID]; ok {
			rec.Sessions = append(rec.Sessions, s)
		}
	}
	return rows.Err()
}

func (a *attendanceRepository) getOne(ctx context.Context, query string, args ...interface{}) (*attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	rec, err := scanAttendance(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if err := a.loadSessions(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records
		WHERE company_id = $1 AND employee_id = $2 AND date = $3`

	rec, err := a.getOne(ctx, query, companyID, employeeID, date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return rec, nil
}

// LockByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records
		WHERE company_id = $1 AND employee_id = $2 AND date = $3
		FOR UPDATE`

	rec, err := a.getOne(ctx, query, companyID, employeeID, date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock attendance: %w", err)
	}
	return rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, companyID, id string) (*attendance.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1 AND company_id = $2`

	rec, err := a.getOne(ctx, query, id, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return rec, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record *attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	if record.ID == "" {
		record.ID = newID()
	}

	query := `
		INSERT INTO attendance_records (
			id, company_id, employee_id, date, clock_in_time, clock_out_time,
			break_minutes, worked_minutes, ot_minutes_calculated, ot_minutes_approved,
			status, standard_work_minutes, source,
			clock_in_latitude, clock_in_longitude, clock_out_latitude, clock_out_longitude
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.Date, record.ClockInTime, record.ClockOutTime,
		record.BreakMinutes, record.WorkedMinutes, record.OTMinutesCalculated, record.OTMinutesApproved,
		record.Status, record.StandardWorkMinutes, record.Source,
		record.ClockInLatitude, record.ClockInLongitude, record.ClockOutLatitude, record.ClockOutLongitude,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.ErrAlreadyClockedIn
		}
		return fmt.Errorf("failed to create attendance: %w", err)
	}

	for i := range record.Sessions {
		record.Sessions[i].RecordID = record.ID
		if err := a.CreateSession(ctx, &record.Sessions[i]); err != nil {
			return err
		}
	}
	return nil
}

// Update implements attendance.AttendanceRepository. Sessions are written by
// CreateSession and CloseSession only.
func (a *attendanceRepository) Update(ctx context.Context, record *attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			clock_in_time = $3, clock_out_time = $4, break_minutes = $5, worked_minutes = $6,
			ot_minutes_calculated = $7, ot_minutes_approved = $8, status = $9, source = $10,
			clock_in_latitude = $11, clock_in_longitude = $12,
			clock_out_latitude = $13, clock_out_longitude = $14,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.CompanyID,
		record.ClockInTime, record.ClockOutTime, record.BreakMinutes, record.WorkedMinutes,
		record.OTMinutesCalculated, record.OTMinutesApproved, record.Status, record.Source,
		record.ClockInLatitude, record.ClockInLongitude,
		record.ClockOutLatitude, record.ClockOutLongitude,
	).Scan(&record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

// CreateSession implements attendance.AttendanceRepository. The partial unique
// index on open sessions turns a racing second clock-in into ErrAlreadyClockedIn.
func (a *attendanceRepository) CreateSession(ctx context.Context, session *attendance.AttendanceSession) error {
	q := GetQuerier(ctx, a.db)

	if session.ID == "" {
		session.ID = newID()
	}

	err := q.QueryRow(ctx, `
		INSERT INTO attendance_sessions (id, record_id, in_time, out_time, session_minutes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, session.ID, session.RecordID, session.InTime, session.OutTime, session.SessionMinutes).Scan(&session.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.ErrAlreadyClockedIn
		}
		return fmt.Errorf("failed to create attendance session: %w", err)
	}
	return nil
}

// CloseSession implements attendance.AttendanceRepository.
func (a *attendanceRepository) CloseSession(ctx context.Context, session *attendance.AttendanceSession) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendance_sessions SET out_time = $2, session_minutes = $3
		WHERE id = $1 AND out_time IS NULL
	`, session.ID, session.OutTime, session.SessionMinutes)
	if err != nil {
		return fmt.Errorf("failed to close attendance session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNotClockedIn
	}
	return nil
}

// UpsertLeaveDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpsertLeaveDay(ctx context.Context, record *attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	if record.ID == "" {
		record.ID = newID()
	}

	query := `
		INSERT INTO attendance_records (
			id, company_id, employee_id, date, status, standard_work_minutes, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT uq_attendance_records_day
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.Date,
		record.Status, record.StandardWorkMinutes, record.Source,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert leave day: %w", err)
	}
	return nil
}

// ListByEmployeeAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndRange(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records
		WHERE company_id = $1 AND employee_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date`

	rows, err := q.Query(ctx, query, companyID, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var ptrs []*attendance.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := a.loadSessions(ctx, ptrs...); err != nil {
		return nil, err
	}

	records := make([]attendance.AttendanceRecord, 0, len(ptrs))
	for _, rec := range ptrs {
		records = append(records, *rec)
	}
	return records, nil
}

// SumApprovedOTMinutes implements attendance.AttendanceRepository.
func (a *attendanceRepository) SumApprovedOTMinutes(ctx context.Context, companyID, employeeID string, from, to time.Time) (int, error) {
	q := GetQuerier(ctx, a.db)

	var total int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(ot_minutes_approved), 0)
		FROM attendance_records
		WHERE company_id = $1 AND employee_id = $2 AND date BETWEEN $3 AND $4
		  AND ot_minutes_approved IS NOT NULL
	`, companyID, employeeID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum approved overtime: %w", err)
	}
	return total, nil
}
