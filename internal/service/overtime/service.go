package overtime

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/utils"
)

type OvertimeServiceImpl struct {
	overtime.OvertimeRuleRepository
	attendanceRepo attendance.AttendanceRepository
	now            func() time.Time
}

func NewOvertimeService(ruleRepo overtime.OvertimeRuleRepository, attendanceRepo attendance.AttendanceRepository) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		OvertimeRuleRepository: ruleRepo,
		attendanceRepo:         attendanceRepo,
		now:                    time.Now,
	}
}

// GetOTRule implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) GetOTRule(ctx context.Context, companyID string, employmentType employee.EmploymentType) (*overtime.OvertimeRule, error) {
	if employmentType != "" {
		rule, err := s.OvertimeRuleRepository.GetActive(ctx, companyID, &employmentType)
		if err != nil {
			return nil, fmt.Errorf("failed to get overtime rule for %s: %w", employmentType, err)
		}
		if rule != nil {
			return rule, nil
		}
	}

	rule, err := s.OvertimeRuleRepository.GetActive(ctx, companyID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get default overtime rule: %w", err)
	}
	return rule, nil
}

// CalculateOTMinutes implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) CalculateOTMinutes(worked, standard int, rule *overtime.OvertimeRule) int {
	return overtime.CalculateOTMinutes(worked, standard, rule)
}

// CheckMonthlyOTLimit implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) CheckMonthlyOTLimit(ctx context.Context, companyID, employeeID string, rule *overtime.OvertimeRule, workDate time.Time, additionalMinutes int) (overtime.MonthlyLimitResult, error) {
	result := overtime.MonthlyLimitResult{AdditionalMinutes: additionalMinutes}
	if rule == nil || rule.MaxOTPerMonthMinutes == nil {
		return result, nil
	}

	if workDate.IsZero() {
		workDate = s.now()
	}
	from, to := utils.MonthBounds(int(workDate.Month()), workDate.Year())
	approved, err := s.attendanceRepo.SumApprovedOTMinutes(ctx, companyID, employeeID, from, to)
	if err != nil {
		return result, fmt.Errorf("failed to sum approved overtime: %w", err)
	}

	limit := *rule.MaxOTPerMonthMinutes
	result.ApprovedMinutes = approved
	result.LimitMinutes = &limit
	result.Exceeded = approved+additionalMinutes > limit
	return result, nil
}

// CreateRule implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) CreateRule(ctx context.Context, req overtime.CreateRuleRequest) (overtime.OvertimeRule, error) {
	if req.CompanyID == "" {
		return overtime.OvertimeRule{}, user.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return overtime.OvertimeRule{}, err
	}

	rule := overtime.OvertimeRule{
		CompanyID:               req.CompanyID,
		EmploymentType:          req.EmploymentType,
		DailyThresholdMinutes:   req.DailyThresholdMinutes,
		RoundingIntervalMinutes: req.RoundingIntervalMinutes,
		MaxOTPerDayMinutes:      req.MaxOTPerDayMinutes,
		MaxOTPerMonthMinutes:    req.MaxOTPerMonthMinutes,
		IsActive:                true,
	}
	if err := s.OvertimeRuleRepository.Create(ctx, &rule); err != nil {
		return overtime.OvertimeRule{}, fmt.Errorf("failed to create overtime rule: %w", err)
	}
	return rule, nil
}

// ListRules implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) ListRules(ctx context.Context, companyID string) ([]overtime.OvertimeRule, error) {
	rules, err := s.OvertimeRuleRepository.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime rules: %w", err)
	}
	return rules, nil
}
