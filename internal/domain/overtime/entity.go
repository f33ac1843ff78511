package overtime

import (
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
)

// OvertimeRule converts worked minutes into overtime minutes. A rule without
// an employment type is the company default.
type OvertimeRule struct {
	ID                      string                   `json:"id"`
	CompanyID               string                   `json:"company_id"`
	EmploymentType          *employee.EmploymentType `json:"employment_type,omitempty"`
	DailyThresholdMinutes   *int                     `json:"daily_threshold_minutes,omitempty"`
	RoundingIntervalMinutes *int                     `json:"rounding_interval_minutes,omitempty"`
	MaxOTPerDayMinutes      *int                     `json:"max_ot_per_day_minutes,omitempty"`
	MaxOTPerMonthMinutes    *int                     `json:"max_ot_per_month_minutes,omitempty"`
	IsActive                bool                     `json:"is_active"`
	CreatedAt               time.Time                `json:"created_at"`
	UpdatedAt               time.Time                `json:"updated_at"`
}

// MonthlyLimitResult is advisory; callers decide whether to act on Exceeded.
type MonthlyLimitResult struct {
	Exceeded          bool `json:"exceeded"`
	ApprovedMinutes   int  `json:"approved_minutes"`
	AdditionalMinutes int  `json:"additional_minutes"`
	LimitMinutes      *int `json:"limit_minutes,omitempty"`
}

// CalculateOTMinutes derives overtime from net worked minutes. The rounding
// interval is applied before the daily cap.
func CalculateOTMinutes(worked, standard int, rule *OvertimeRule) int {
	if rule == nil {
		return max(0, worked-standard)
	}

	threshold := standard
	if rule.DailyThresholdMinutes != nil {
		threshold = *rule.DailyThresholdMinutes
	}
	ot := max(0, worked-threshold)

	if rule.RoundingIntervalMinutes != nil && *rule.RoundingIntervalMinutes > 0 {
		interval := *rule.RoundingIntervalMinutes
		rem := ot % interval
		ot -= rem
		if 2*rem >= interval {
			ot += interval
		}
	}

	if rule.MaxOTPerDayMinutes != nil && ot > *rule.MaxOTPerDayMinutes {
		ot = max(0, *rule.MaxOTPerDayMinutes)
	}
	return ot
}
