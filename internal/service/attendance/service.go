package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/utils"
	notificationService "github.com/cmlabs-hris/hris-workforce-engine/internal/service/notification"
)

type AttendanceServiceImpl struct {
	db database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	company.CompanyRepository
	overtimeService     overtime.OvertimeService
	notificationService notification.Service
	now                 func() time.Time
}

func NewAttendanceService(
	db database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	companyRepo company.CompanyRepository,
	overtimeService overtime.OvertimeService,
	notificationService notification.Service,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		db:                   db,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		CompanyRepository:    companyRepo,
		overtimeService:      overtimeService,
		notificationService:  notificationService,
		now:                  time.Now,
	}
}

// today is the tenant-local calendar date of now.
func today(now time.Time, settings company.Settings) time.Time {
	return utils.CivilDate(now.In(settings.Location()))
}

func checkGeofence(settings company.Settings, lat, lon *float64) error {
	if !settings.HasGeofence() {
		return nil
	}
	if lat == nil || lon == nil {
		return attendance.ErrLocationRequired
	}

	distance := utils.CalculateHaversineDistance(*lat, *lon, *settings.OfficeLatitude, *settings.OfficeLongitude)
	if distance > *settings.AllowedRadiusMeters {
		return &attendance.GeofenceError{
			DistanceMeters: distance,
			RadiusMeters:   *settings.AllowedRadiusMeters,
		}
	}
	return nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, req.CompanyID, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive() {
		return attendance.AttendanceResponse{}, employee.ErrEmployeeInactive
	}

	settings, err := a.CompanyRepository.GetSettings(ctx, req.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get company settings: %w", err)
	}

	if err := checkGeofence(settings, req.Latitude, req.Longitude); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	source := req.Source
	if source == "" {
		source = attendance.SourceWeb
	}

	now := a.now().UTC()
	date := today(now, settings)

	var recordID string
	err = a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := a.AttendanceRepository.LockByEmployeeAndDate(ctx, req.CompanyID, req.EmployeeID, date)
		if err != nil {
			return fmt.Errorf("failed to lock attendance record: %w", err)
		}

		if record == nil {
			record = &attendance.AttendanceRecord{
				CompanyID:           req.CompanyID,
				EmployeeID:          req.EmployeeID,
				Date:                date,
				ClockInTime:         &now,
				Status:              attendance.StatusPresent,
				StandardWorkMinutes: settings.StandardMinutes(),
				Source:              source,
				ClockInLatitude:     req.Latitude,
				ClockInLongitude:    req.Longitude,
				Sessions:            []attendance.AttendanceSession{{InTime: now}},
			}
			if err := a.AttendanceRepository.Create(ctx, record); err != nil {
				return fmt.Errorf("failed to create attendance record: %w", err)
			}
			recordID = record.ID
			return nil
		}

		if record.OpenSession() != nil {
			return attendance.ErrAlreadyClockedIn
		}

		if err := a.AttendanceRepository.CreateSession(ctx, &attendance.AttendanceSession{
			RecordID: record.ID,
			InTime:   now,
		}); err != nil {
			return fmt.Errorf("failed to open attendance session: %w", err)
		}

		// First clock-in of a day that already had a record, e.g. one written for leave.
		if record.ClockInTime == nil {
			record.ClockInTime = &now
			record.Status = attendance.StatusPresent
			record.Source = source
			record.ClockInLatitude = req.Latitude
			record.ClockInLongitude = req.Longitude
			if record.StandardWorkMinutes == 0 {
				record.StandardWorkMinutes = settings.StandardMinutes()
			}
			if err := a.AttendanceRepository.Update(ctx, record); err != nil {
				return fmt.Errorf("failed to update attendance record: %w", err)
			}
		}
		recordID = record.ID
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.AttendanceRepository.GetByID(ctx, req.CompanyID, recordID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to reload attendance record: %w", err)
	}
	return attendance.ToResponse(record), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, req.CompanyID, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	settings, err := a.CompanyRepository.GetSettings(ctx, req.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get company settings: %w", err)
	}

	rule, err := a.overtimeService.GetOTRule(ctx, req.CompanyID, emp.EmploymentType)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now().UTC()
	date := today(now, settings)

	var result *attendance.AttendanceRecord
	err = a.db.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := a.AttendanceRepository.LockByEmployeeAndDate(ctx, req.CompanyID, req.EmployeeID, date)
		if err != nil {
			return fmt.Errorf("failed to lock attendance record: %w", err)
		}
		if record == nil {
			return attendance.ErrNotClockedIn
		}

		open := record.OpenSession()
		if open == nil {
			return attendance.ErrNotClockedIn
		}

		minutes := utils.MinutesBetween(open.InTime, now)
		open.OutTime = &now
		open.SessionMinutes = &minutes
		if err := a.AttendanceRepository.CloseSession(ctx, open); err != nil {
			return fmt.Errorf("failed to close attendance session: %w", err)
		}

		if req.BreakMinutes != nil {
			record.BreakMinutes = *req.BreakMinutes
		}
		if record.StandardWorkMinutes == 0 {
			record.StandardWorkMinutes = settings.StandardMinutes()
		}

		worked := utils.NonNegative(record.TotalSessionMinutes() - record.BreakMinutes)
		otMinutes := a.overtimeService.CalculateOTMinutes(worked, record.StandardWorkMinutes, rule)

		record.ClockOutTime = &now
		record.WorkedMinutes = worked
		record.OTMinutesCalculated = &otMinutes
		record.ClockOutLatitude = req.Latitude
		record.ClockOutLongitude = req.Longitude

		if err := a.AttendanceRepository.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		result = record
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(result), nil
}

// GetTodayStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetTodayStatus(ctx context.Context, companyID, employeeID string) (attendance.TodayStatusResponse, error) {
	if companyID == "" {
		return attendance.TodayStatusResponse{}, user.ErrCompanyIDRequired
	}
	if employeeID == "" {
		return attendance.TodayStatusResponse{}, user.ErrEmployeeIDRequired
	}

	settings, err := a.CompanyRepository.GetSettings(ctx, companyID)
	if err != nil {
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to get company settings: %w", err)
	}

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, companyID, employeeID, today(a.now(), settings))
	if err != nil {
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil {
		return attendance.TodayStatusResponse{ClockedIn: false}, nil
	}

	resp := attendance.ToResponse(record)
	return attendance.TodayStatusResponse{
		ClockedIn: record.IsClockedIn(),
		Record:    &resp,
	}, nil
}

// ApproveOvertime implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ApproveOvertime(ctx context.Context, req attendance.ApproveOvertimeRequest) (attendance.ApproveOvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ApproveOvertimeResponse{}, err
	}

	record, err := a.AttendanceRepository.GetByID(ctx, req.CompanyID, req.RecordID)
	if err != nil {
		return attendance.ApproveOvertimeResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, req.CompanyID, record.EmployeeID)
	if err != nil {
		return attendance.ApproveOvertimeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if req.Approver.CompanyID != req.CompanyID || !req.Approver.CanApproveFor(emp.ManagerID) {
		return attendance.ApproveOvertimeResponse{}, user.ErrForbidden
	}

	if record.OTMinutesCalculated == nil || *record.OTMinutesCalculated == 0 {
		return attendance.ApproveOvertimeResponse{}, attendance.ErrNoOvertimeToApprove
	}
	if req.ApprovedMinutes > *record.OTMinutesCalculated {
		return attendance.ApproveOvertimeResponse{}, attendance.ErrInvalidApprovedHours
	}

	rule, err := a.overtimeService.GetOTRule(ctx, req.CompanyID, emp.EmploymentType)
	if err != nil {
		return attendance.ApproveOvertimeResponse{}, err
	}

	// Minutes already approved on this record are part of the monthly sum.
	additional := req.ApprovedMinutes
	if record.OTMinutesApproved != nil {
		additional -= *record.OTMinutesApproved
	}
	limit, err := a.overtimeService.CheckMonthlyOTLimit(ctx, req.CompanyID, record.EmployeeID, rule, record.Date, additional)
	if err != nil {
		return attendance.ApproveOvertimeResponse{}, err
	}

	approved := req.ApprovedMinutes
	record.OTMinutesApproved = &approved
	if err := a.AttendanceRepository.Update(ctx, record); err != nil {
		return attendance.ApproveOvertimeResponse{}, fmt.Errorf("failed to approve overtime: %w", err)
	}

	var senderID *string
	if req.Approver.EmployeeID != "" {
		senderID = &req.Approver.EmployeeID
	}
	notificationService.Dispatch(ctx, a.notificationService, notification.CreateNotificationRequest{
		CompanyID:   req.CompanyID,
		RecipientID: &record.EmployeeID,
		SenderID:    senderID,
		Type:        notification.TypeOvertimeApproved,
		Title:       "Overtime approved",
		Message:     fmt.Sprintf("%d overtime minutes approved for %s", approved, record.Date.Format(utils.DateLayout)),
		Data: map[string]interface{}{
			"attendance_id":    record.ID,
			"approved_minutes": approved,
		},
	})

	return attendance.ApproveOvertimeResponse{
		Record:       attendance.ToResponse(record),
		MonthlyLimit: limit,
	}, nil
}
