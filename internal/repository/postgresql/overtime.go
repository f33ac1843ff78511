package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const overtimeRuleColumns = `
	id, company_id, employment_type, daily_threshold_minutes, rounding_interval_minutes,
	max_ot_per_day_minutes, max_ot_per_month_minutes, is_active, created_at, updated_at
`

type overtimeRuleRepository struct {
	db *database.DB
}

func NewOvertimeRuleRepository(db *database.DB) overtime.OvertimeRuleRepository {
	return &overtimeRuleRepository{db: db}
}

func scanOvertimeRule(row pgx.Row) (*overtime.OvertimeRule, error) {
	var r overtime.OvertimeRule
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.EmploymentType, &r.DailyThresholdMinutes, &r.RoundingIntervalMinutes,
		&r.MaxOTPerDayMinutes, &r.MaxOTPerMonthMinutes, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetActive implements overtime.OvertimeRuleRepository.
func (o *overtimeRuleRepository) GetActive(ctx context.Context, companyID string, employmentType *employee.EmploymentType) (*overtime.OvertimeRule, error) {
	q := GetQuerier(ctx, o.db)

	query := `SELECT ` + overtimeRuleColumns + ` FROM overtime_rules WHERE company_id = $1 AND is_active`
	args := []interface{}{companyID}
	if employmentType == nil {
		query += ` AND employment_type IS NULL`
	} else {
		query += ` AND employment_type = $2`
		args = append(args, *employmentType)
	}
	query += ` LIMIT 1`

	rule, err := scanOvertimeRule(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get overtime rule: %w", err)
	}
	return rule, nil
}

// Create implements overtime.OvertimeRuleRepository.
func (o *overtimeRuleRepository) Create(ctx context.Context, rule *overtime.OvertimeRule) error {
	q := GetQuerier(ctx, o.db)

	if rule.ID == "" {
		rule.ID = newID()
	}

	err := q.QueryRow(ctx, `
		INSERT INTO overtime_rules (
			id, company_id, employment_type, daily_threshold_minutes, rounding_interval_minutes,
			max_ot_per_day_minutes, max_ot_per_month_minutes, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`,
		rule.ID, rule.CompanyID, rule.EmploymentType, rule.DailyThresholdMinutes, rule.RoundingIntervalMinutes,
		rule.MaxOTPerDayMinutes, rule.MaxOTPerMonthMinutes, rule.IsActive,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return overtime.ErrOvertimeRuleExists
		}
		return fmt.Errorf("failed to create overtime rule: %w", err)
	}
	return nil
}

// List implements overtime.OvertimeRuleRepository.
func (o *overtimeRuleRepository) List(ctx context.Context, companyID string) ([]overtime.OvertimeRule, error) {
	q := GetQuerier(ctx, o.db)

	rows, err := q.Query(ctx, `SELECT `+overtimeRuleColumns+` FROM overtime_rules
		WHERE company_id = $1
		ORDER BY employment_type NULLS FIRST, created_at`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime rules: %w", err)
	}
	defer rows.Close()

	rules := make([]overtime.OvertimeRule, 0)
	for rows.Next() {
		rule, err := scanOvertimeRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}
