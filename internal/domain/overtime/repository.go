package overtime

import (
	"context"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
)

type OvertimeRuleRepository interface {
	// GetActive returns the active rule for exactly this employment type, or
	// the company default when employmentType is nil. nil, nil when absent.
	GetActive(ctx context.Context, companyID string, employmentType *employee.EmploymentType) (*OvertimeRule, error)
	Create(ctx context.Context, rule *OvertimeRule) error
	List(ctx context.Context, companyID string) ([]OvertimeRule, error)
}
