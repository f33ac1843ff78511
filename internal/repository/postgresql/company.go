package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

// GetSettings implements company.CompanyRepository.
func (r *companyRepositoryImpl) GetSettings(ctx context.Context, companyID string) (company.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, timezone, office_latitude, office_longitude, allowed_radius_meters, standard_work_minutes
		FROM companies
		WHERE id = $1
	`

	var s company.Settings
	err := q.QueryRow(ctx, query, companyID).Scan(
		&s.CompanyID, &s.Timezone, &s.OfficeLatitude, &s.OfficeLongitude, &s.AllowedRadiusMeters, &s.StandardWorkMinutes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Settings{}, company.ErrCompanyNotFound
		}
		return company.Settings{}, fmt.Errorf("failed to get company settings: %w", err)
	}
	return s, nil
}

// ListHolidays implements company.CompanyRepository.
func (r *companyRepositoryImpl) ListHolidays(ctx context.Context, companyID string, from, to time.Time) ([]company.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, date, name, is_active
		FROM holidays
		WHERE company_id = $1 AND is_active AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	holidays := make([]company.Holiday, 0)
	for rows.Next() {
		var h company.Holiday
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.Date, &h.Name, &h.IsActive); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// ListCompanyIDs implements company.CompanyRepository.
func (r *companyRepositoryImpl) ListCompanyIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
