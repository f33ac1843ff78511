package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
)

type overtimeRuleRepository struct {
	s *Store
}

func NewOvertimeRuleRepository(s *Store) overtime.OvertimeRuleRepository {
	return &overtimeRuleRepository{s: s}
}

func sameEmploymentType(a, b *employee.EmploymentType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *overtimeRuleRepository) GetActive(ctx context.Context, companyID string, employmentType *employee.EmploymentType) (*overtime.OvertimeRule, error) {
	defer r.s.rlock(ctx)()

	for _, rule := range r.s.d.otRules {
		if rule.CompanyID == companyID && rule.IsActive && sameEmploymentType(rule.EmploymentType, employmentType) {
			out := rule
			return &out, nil
		}
	}
	return nil, nil
}

func (r *overtimeRuleRepository) Create(ctx context.Context, rule *overtime.OvertimeRule) error {
	defer r.s.lock(ctx)()

	if rule.IsActive {
		for _, existing := range r.s.d.otRules {
			if existing.CompanyID == rule.CompanyID && existing.IsActive && sameEmploymentType(existing.EmploymentType, rule.EmploymentType) {
				return overtime.ErrOvertimeRuleExists
			}
		}
	}
	if rule.ID == "" {
		rule.ID = newID()
	}
	now := r.s.now()
	rule.CreatedAt, rule.UpdatedAt = now, now
	r.s.d.otRules[rule.ID] = *rule
	return nil
}

func (r *overtimeRuleRepository) List(ctx context.Context, companyID string) ([]overtime.OvertimeRule, error) {
	defer r.s.rlock(ctx)()

	var out []overtime.OvertimeRule
	for _, rule := range r.s.d.otRules {
		if rule.CompanyID == companyID {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt) || (out[i].CreatedAt.Equal(out[j].CreatedAt) && out[i].ID < out[j].ID)
	})
	return out, nil
}
