package overtime

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
)

type OvertimeService interface {
	// GetOTRule resolves the exact employment-type rule, then the company
	// default. It returns nil when neither exists.
	GetOTRule(ctx context.Context, companyID string, employmentType employee.EmploymentType) (*OvertimeRule, error)

	CalculateOTMinutes(worked, standard int, rule *OvertimeRule) int

	// CheckMonthlyOTLimit adds additionalMinutes to the approved overtime of
	// the month containing workDate (the current month when zero) and compares
	// against the rule's monthly cap.
	CheckMonthlyOTLimit(ctx context.Context, companyID, employeeID string, rule *OvertimeRule, workDate time.Time, additionalMinutes int) (MonthlyLimitResult, error)

	CreateRule(ctx context.Context, req CreateRuleRequest) (OvertimeRule, error)
	ListRules(ctx context.Context, companyID string) ([]OvertimeRule, error)
}
