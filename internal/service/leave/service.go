package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/lock"
)

// accrualLockTTL bounds how long a crashed accrual can block the next attempt.
const accrualLockTTL = 10 * time.Minute

type LeaveServiceImpl struct {
	db database.Transactor
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	leave.LeaveRequestRepository
	leave.AccrualRuleRepository
	leave.AccrualRunRepository
	employee.EmployeeRepository
	company.CompanyRepository
	attendanceRepo      attendance.AttendanceRepository
	locker              lock.Locker
	notificationService notification.Service
	now                 func() time.Time
}

func NewLeaveService(
	db database.Transactor,
	leaveTypeRepo leave.LeaveTypeRepository,
	leaveBalanceRepo leave.LeaveBalanceRepository,
	leaveRequestRepo leave.LeaveRequestRepository,
	accrualRuleRepo leave.AccrualRuleRepository,
	accrualRunRepo leave.AccrualRunRepository,
	employeeRepo employee.EmployeeRepository,
	companyRepo company.CompanyRepository,
	attendanceRepo attendance.AttendanceRepository,
	locker lock.Locker,
	notificationService notification.Service,
) leave.LeaveService {
	return &LeaveServiceImpl{
		db:                     db,
		LeaveTypeRepository:    leaveTypeRepo,
		LeaveBalanceRepository: leaveBalanceRepo,
		LeaveRequestRepository: leaveRequestRepo,
		AccrualRuleRepository:  accrualRuleRepo,
		AccrualRunRepository:   accrualRunRepo,
		EmployeeRepository:     employeeRepo,
		CompanyRepository:      companyRepo,
		attendanceRepo:         attendanceRepo,
		locker:                 locker,
		notificationService:    notificationService,
		now:                    time.Now,
	}
}

// GetBalances implements leave.LeaveService.
func (l *LeaveServiceImpl) GetBalances(ctx context.Context, companyID, employeeID string, year int) ([]leave.BalanceResponse, error) {
	if companyID == "" {
		return nil, user.ErrCompanyIDRequired
	}
	if employeeID == "" {
		return nil, user.ErrEmployeeIDRequired
	}
	if year == 0 {
		year = l.now().Year()
	}

	balances, err := l.LeaveBalanceRepository.ListByEmployeeYear(ctx, companyID, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	responses := make([]leave.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		responses = append(responses, leave.BalanceResponse{
			LeaveTypeID:   b.LeaveTypeID,
			LeaveTypeCode: b.LeaveTypeCode,
			LeaveTypeName: b.LeaveTypeName,
			Year:          b.Year,
			TotalDays:     b.TotalDays,
			UsedDays:      b.UsedDays,
			PendingDays:   b.PendingDays,
			CarriedOver:   b.CarriedOver,
			Available:     b.Available(),
		})
	}
	return responses, nil
}
