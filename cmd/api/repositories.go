package main

import (
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/repository/memory"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/repository/postgresql"
)

// repositories is the full storage set for one driver.
type repositories struct {
	tx database.Transactor

	company      company.CompanyRepository
	employee     employee.EmployeeRepository
	attendance   attendance.AttendanceRepository
	overtimeRule overtime.OvertimeRuleRepository

	leaveType    leave.LeaveTypeRepository
	leaveBalance leave.LeaveBalanceRepository
	leaveRequest leave.LeaveRequestRepository
	accrualRule  leave.AccrualRuleRepository
	accrualRun   leave.AccrualRunRepository

	salaryStructure payroll.SalaryStructureRepository
	employeeSalary  payroll.EmployeeSalaryRepository
	payrollRun      payroll.PayrollRunRepository
	payslip         payroll.PayslipRepository

	notification notification.Repository
}

func newPostgresRepositories(db *database.DB) repositories {
	return repositories{
		tx:              postgresql.NewTransactor(db),
		company:         postgresql.NewCompanyRepository(db),
		employee:        postgresql.NewEmployeeRepository(db),
		attendance:      postgresql.NewAttendanceRepository(db),
		overtimeRule:    postgresql.NewOvertimeRuleRepository(db),
		leaveType:       postgresql.NewLeaveTypeRepository(db),
		leaveBalance:    postgresql.NewLeaveBalanceRepository(db),
		leaveRequest:    postgresql.NewLeaveRequestRepository(db),
		accrualRule:     postgresql.NewAccrualRuleRepository(db),
		accrualRun:      postgresql.NewAccrualRunRepository(db),
		salaryStructure: postgresql.NewSalaryStructureRepository(db),
		employeeSalary:  postgresql.NewEmployeeSalaryRepository(db),
		payrollRun:      postgresql.NewPayrollRunRepository(db),
		payslip:         postgresql.NewPayslipRepository(db),
		notification:    postgresql.NewNotificationRepository(db),
	}
}

func newMemoryRepositories(store *memory.Store) repositories {
	return repositories{
		tx:              store,
		company:         memory.NewCompanyRepository(store),
		employee:        memory.NewEmployeeRepository(store),
		attendance:      memory.NewAttendanceRepository(store),
		overtimeRule:    memory.NewOvertimeRuleRepository(store),
		leaveType:       memory.NewLeaveTypeRepository(store),
		leaveBalance:    memory.NewLeaveBalanceRepository(store),
		leaveRequest:    memory.NewLeaveRequestRepository(store),
		accrualRule:     memory.NewAccrualRuleRepository(store),
		accrualRun:      memory.NewAccrualRunRepository(store),
		salaryStructure: memory.NewSalaryStructureRepository(store),
		employeeSalary:  memory.NewEmployeeSalaryRepository(store),
		payrollRun:      memory.NewPayrollRunRepository(store),
		payslip:         memory.NewPayslipRepository(store),
		notification:    memory.NewNotificationRepository(store),
	}
}
