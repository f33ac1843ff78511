package company

import (
	"context"
	"time"
)

type CompanyRepository interface {
	// GetSettings returns ErrCompanyNotFound for unknown tenants.
	GetSettings(ctx context.Context, companyID string) (Settings, error)
	// ListHolidays returns the active holidays dated within [from, to].
	ListHolidays(ctx context.Context, companyID string, from, to time.Time) ([]Holiday, error)
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
