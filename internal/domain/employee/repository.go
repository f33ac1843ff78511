package employee

import "context"

// EmployeeRepository is a read-only lookup into the employee directory.
type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound for unknown or out-of-tenant ids.
	GetByID(ctx context.Context, companyID, id string) (Employee, error)
	// ListActive returns ACTIVE employees ordered by id. A non-empty ids
	// filter restricts the result to those employees.
	ListActive(ctx context.Context, companyID string, ids []string) ([]Employee, error)
}
