package fixtures

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/repository/memory"
	"github.com/shopspring/decimal"
)

func intPtr(i int) *int { return &i }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ==========================================
// DEFAULT LEAVE TYPES
// ==========================================

// DefaultLeaveTypes returns the standard leave types based on Indonesian labor
// law. IDs are derived from the company ID and the code.
func DefaultLeaveTypes(companyID string) []leave.LeaveType {
	return []leave.LeaveType{
		// Annual Leave (Cuti Tahunan), 12 days per year accrued monthly
		{
			ID:                  leaveTypeID(companyID, "ANNUAL"),
			CompanyID:           companyID,
			Code:                "ANNUAL",
			Name:                "Cuti Tahunan",
			IsPaid:              true,
			IsActive:            true,
			CarryForwardPolicy:  leave.CarryForwardLimited,
			MaxCarryForwardDays: decPtr("6"),
			DefaultDays:         decimal.NewFromInt(12),
		},

		// Sick Leave (Cuti Sakit)
		{
			ID:                 leaveTypeID(companyID, "SICK"),
			CompanyID:          companyID,
			Code:               "SICK",
			Name:               "Cuti Sakit",
			IsPaid:             true,
			IsActive:           true,
			CarryForwardPolicy: leave.CarryForwardNone,
			DefaultDays:        decimal.NewFromInt(14),
		},

		// Unpaid leave, never balance-checked
		{
			ID:                 leaveTypeID(companyID, leave.CodeLOP),
			CompanyID:          companyID,
			Code:               leave.CodeLOP,
			Name:               "Cuti Di Luar Tanggungan",
			IsPaid:             false,
			IsActive:           true,
			CarryForwardPolicy: leave.CarryForwardNone,
			DefaultDays:        decimal.Zero,
		},
	}
}

// DefaultAccrualRules credits one annual leave day per month up to 18 days.
func DefaultAccrualRules(companyID string) []leave.AccrualRule {
	return []leave.AccrualRule{
		{
			ID:                 fmt.Sprintf("%s-accrual-annual", companyID),
			CompanyID:          companyID,
			LeaveTypeID:        leaveTypeID(companyID, "ANNUAL"),
			MonthlyAccrualDays: decimal.NewFromInt(1),
			MaxBalanceCap:      decPtr("18"),
			ApplyCapOnAccrual:  true,
			IsActive:           true,
			LeaveTypeCode:      "ANNUAL",
		},
	}
}

// DefaultOvertimeRule is the tenant-wide rule: 8h threshold, 30 minute
// rounding, at most 4h a day and 40h a month.
func DefaultOvertimeRule(companyID string) overtime.OvertimeRule {
	return overtime.OvertimeRule{
		CompanyID:               companyID,
		DailyThresholdMinutes:   intPtr(company.DefaultStandardWorkMinutes),
		RoundingIntervalMinutes: intPtr(30),
		MaxOTPerDayMinutes:      intPtr(240),
		MaxOTPerMonthMinutes:    intPtr(2400),
		IsActive:                true,
	}
}

// ==========================================
// DEMO TENANT
// ==========================================

const DemoCompanyID = "demo-company"

// DemoEmployees are the employees of the demo tenant. emp-demo-1 manages the others.
func DemoEmployees() []employee.Employee {
	manager := "emp-demo-1"
	return []employee.Employee{
		{
			ID: manager, CompanyID: DemoCompanyID, EmployeeCode: "D001", FullName: "Dewi Lestari",
			Status: employee.StatusActive, EmploymentType: employee.EmploymentTypePermanent,
			PayType: employee.PayTypeMonthly,
		},
		{
			ID: "emp-demo-2", CompanyID: DemoCompanyID, EmployeeCode: "D002", FullName: "Eko Prasetyo",
			Status: employee.StatusActive, EmploymentType: employee.EmploymentTypeContract,
			PayType: employee.PayTypeMonthly, ManagerID: &manager,
		},
		{
			ID: "emp-demo-3", CompanyID: DemoCompanyID, EmployeeCode: "D003", FullName: "Fitri Handayani",
			Status: employee.StatusActive, EmploymentType: employee.EmploymentTypeInternship,
			PayType: employee.PayTypeHourly, HourlyRate: decimal.NewFromInt(50000),
			OTMultiplier: decimal.RequireFromString("1.5"), ManagerID: &manager,
		},
	}
}

// SeedMemoryStore loads the demo tenant with its defaults into an in-memory
// store so the memory driver is usable right after start.
func SeedMemoryStore(ctx context.Context, store *memory.Store) error {
	store.PutSettings(company.Settings{
		CompanyID:           DemoCompanyID,
		Timezone:            "Asia/Jakarta",
		StandardWorkMinutes: company.DefaultStandardWorkMinutes,
	})
	for _, e := range DemoEmployees() {
		store.PutEmployee(e)
	}
	for _, t := range DefaultLeaveTypes(DemoCompanyID) {
		store.PutLeaveType(t)
	}
	for _, r := range DefaultAccrualRules(DemoCompanyID) {
		store.PutAccrualRule(r)
	}

	rule := DefaultOvertimeRule(DemoCompanyID)
	if err := memory.NewOvertimeRuleRepository(store).Create(ctx, &rule); err != nil {
		return fmt.Errorf("failed to seed overtime rule: %w", err)
	}
	return nil
}

func leaveTypeID(companyID, code string) string {
	return fmt.Sprintf("%s-leave-%s", companyID, code)
}
