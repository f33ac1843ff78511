package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/validator"
)

type PayrollServiceImpl struct {
	db                  database.Transactor
	structureRepo       payroll.SalaryStructureRepository
	salaryRepo          payroll.EmployeeSalaryRepository
	runRepo             payroll.PayrollRunRepository
	payslipRepo         payroll.PayslipRepository
	employeeRepo        employee.EmployeeRepository
	companyRepo         company.CompanyRepository
	attendanceRepo      attendance.AttendanceRepository
	leaveRepo           leave.LeaveRequestRepository
	locker              lock.Locker
	notificationService notification.Service
	now                 func() time.Time
}

func NewPayrollService(
	db database.Transactor,
	structureRepo payroll.SalaryStructureRepository,
	salaryRepo payroll.EmployeeSalaryRepository,
	runRepo payroll.PayrollRunRepository,
	payslipRepo payroll.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	companyRepo company.CompanyRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	locker lock.Locker,
	notificationService notification.Service,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		db:                  db,
		structureRepo:       structureRepo,
		salaryRepo:          salaryRepo,
		runRepo:             runRepo,
		payslipRepo:         payslipRepo,
		employeeRepo:        employeeRepo,
		companyRepo:         companyRepo,
		attendanceRepo:      attendanceRepo,
		leaveRepo:           leaveRepo,
		locker:              locker,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// ========== SALARY STRUCTURES ==========

func (s *PayrollServiceImpl) CreateStructure(ctx context.Context, req payroll.CreateStructureRequest) (payroll.SalaryStructure, error) {
	if req.CompanyID == "" {
		return payroll.SalaryStructure{}, user.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return payroll.SalaryStructure{}, err
	}

	structure := payroll.SalaryStructure{
		CompanyID:  req.CompanyID,
		Name:       req.Name,
		Components: req.Components,
		IsActive:   true,
	}
	if err := s.structureRepo.Create(ctx, &structure); err != nil {
		return payroll.SalaryStructure{}, fmt.Errorf("failed to create salary structure: %w", err)
	}
	return structure, nil
}

func (s *PayrollServiceImpl) AssignSalary(ctx context.Context, req payroll.AssignSalaryRequest) (payroll.EmployeeSalary, error) {
	if req.CompanyID == "" {
		return payroll.EmployeeSalary{}, user.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return payroll.EmployeeSalary{}, err
	}
	effectiveFrom, _ := validator.IsValidDate(req.EffectiveFrom)

	if _, err := s.employeeRepo.GetByID(ctx, req.CompanyID, req.EmployeeID); err != nil {
		return payroll.EmployeeSalary{}, fmt.Errorf("failed to get employee: %w", err)
	}
	structure, err := s.structureRepo.GetByID(ctx, req.CompanyID, req.StructureID)
	if err != nil {
		return payroll.EmployeeSalary{}, fmt.Errorf("failed to get salary structure: %w", err)
	}

	salary := payroll.EmployeeSalary{
		CompanyID:     req.CompanyID,
		EmployeeID:    req.EmployeeID,
		StructureID:   structure.ID,
		BasePay:       req.BasePay,
		EffectiveFrom: effectiveFrom,
	}

	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := s.salaryRepo.GetOpen(ctx, req.CompanyID, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get current salary: %w", err)
		}
		if open != nil {
			if !effectiveFrom.After(open.EffectiveFrom) {
				return payroll.ErrSalaryOverlap
			}
			if err := s.salaryRepo.Close(ctx, open.ID, effectiveFrom.AddDate(0, 0, -1)); err != nil {
				return fmt.Errorf("failed to close current salary: %w", err)
			}
		}

		if err := s.salaryRepo.Create(ctx, &salary); err != nil {
			return fmt.Errorf("failed to assign salary: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.EmployeeSalary{}, err
	}

	salary.Structure = structure
	return salary, nil
}

// ========== PAYSLIPS ==========

func (s *PayrollServiceImpl) GetRun(ctx context.Context, companyID, runID string) (payroll.PayrollRunResponse, error) {
	run, err := s.runRepo.GetByID(ctx, companyID, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return payroll.ToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, companyID, runID string) ([]payroll.PayslipResponse, error) {
	if _, err := s.runRepo.GetByID(ctx, companyID, runID); err != nil {
		return nil, fmt.Errorf("failed to get payroll run: %w", err)
	}

	payslips, err := s.payslipRepo.ListByRun(ctx, companyID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	return mapToPayslipResponses(payslips), nil
}

func (s *PayrollServiceImpl) GetMyPayslips(ctx context.Context, companyID, employeeID string) ([]payroll.PayslipResponse, error) {
	if employeeID == "" {
		return nil, user.ErrEmployeeIDRequired
	}

	payslips, err := s.payslipRepo.ListReleasedByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	return mapToPayslipResponses(payslips), nil
}

func (s *PayrollServiceImpl) GetMyPayslip(ctx context.Context, companyID, employeeID, payslipID string) (payroll.PayslipResponse, error) {
	payslips, err := s.GetMyPayslips(ctx, companyID, employeeID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	for _, p := range payslips {
		if p.ID == payslipID {
			return p, nil
		}
	}
	return payroll.PayslipResponse{}, payroll.ErrPayslipNotFound
}

func mapToPayslipResponses(payslips []payroll.Payslip) []payroll.PayslipResponse {
	result := make([]payroll.PayslipResponse, 0, len(payslips))
	for i := range payslips {
		result = append(result, payroll.ToPayslipResponse(&payslips[i]))
	}
	return result
}
