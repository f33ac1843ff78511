package overtime

import (
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/validator"
)

type CreateRuleRequest struct {
	CompanyID               string                   `json:"-"`
	EmploymentType          *employee.EmploymentType `json:"employment_type"`
	DailyThresholdMinutes   *int                     `json:"daily_threshold_minutes"`
	RoundingIntervalMinutes *int                     `json:"rounding_interval_minutes"`
	MaxOTPerDayMinutes      *int                     `json:"max_ot_per_day_minutes"`
	MaxOTPerMonthMinutes    *int                     `json:"max_ot_per_month_minutes"`
}

func (r *CreateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	checkNonNegative := func(field string, v *int) {
		if v != nil && *v < 0 {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " cannot be negative"})
		}
	}
	checkNonNegative("daily_threshold_minutes", r.DailyThresholdMinutes)
	checkNonNegative("max_ot_per_day_minutes", r.MaxOTPerDayMinutes)
	checkNonNegative("max_ot_per_month_minutes", r.MaxOTPerMonthMinutes)

	if r.RoundingIntervalMinutes != nil && (*r.RoundingIntervalMinutes <= 0 || *r.RoundingIntervalMinutes > 60) {
		errs = append(errs, validator.ValidationError{
			Field:   "rounding_interval_minutes",
			Message: "rounding_interval_minutes must be between 1 and 60",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
