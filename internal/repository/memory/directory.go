package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/employee"
)

type companyRepository struct {
	s *Store
}

func NewCompanyRepository(s *Store) company.CompanyRepository {
	return &companyRepository{s: s}
}

func (r *companyRepository) GetSettings(ctx context.Context, companyID string) (company.Settings, error) {
	defer r.s.rlock(ctx)()

	settings, ok := r.s.d.settings[companyID]
	if !ok {
		return company.Settings{}, company.ErrCompanyNotFound
	}
	return settings, nil
}

func (r *companyRepository) ListHolidays(ctx context.Context, companyID string, from, to time.Time) ([]company.Holiday, error) {
	defer r.s.rlock(ctx)()

	var out []company.Holiday
	for _, h := range r.s.d.holidays {
		if h.CompanyID != companyID || !h.IsActive {
			continue
		}
		if h.Date.Before(from) || h.Date.After(to) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *companyRepository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	defer r.s.rlock(ctx)()

	ids := make([]string, 0, len(r.s.d.settings))
	for id := range r.s.d.settings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type employeeRepository struct {
	s *Store
}

func NewEmployeeRepository(s *Store) employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

func (r *employeeRepository) GetByID(ctx context.Context, companyID, id string) (employee.Employee, error) {
	defer r.s.rlock(ctx)()

	e, ok := r.s.d.employees[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) ListActive(ctx context.Context, companyID string, ids []string) ([]employee.Employee, error) {
	defer r.s.rlock(ctx)()

	var out []employee.Employee
	for _, e := range r.s.d.employees {
		if e.CompanyID != companyID || !e.IsActive() {
			continue
		}
		if len(ids) > 0 && !slices.Contains(ids, e.ID) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
