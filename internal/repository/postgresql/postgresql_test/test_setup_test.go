package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/database"
)

const migrationFile = "000001_workforce_engine.up.sql"

// TestDatabaseSetup holds the connection used by the integration tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema. ok is
// false when the variable is not set.
func NewTestDatabase(ctx context.Context) (setup *TestDatabaseSetup, ok bool, err error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, false, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 10})
	if err != nil {
		return nil, true, fmt.Errorf("failed to connect to test database: %w", err)
	}

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", migrationFile))
	if err != nil {
		db.Close()
		return nil, true, fmt.Errorf("failed to read migration: %w", err)
	}
	if _, err := db.Exec(ctx, string(schema)); err != nil {
		db.Close()
		return nil, true, fmt.Errorf("failed to apply migration: %w", err)
	}

	return &TestDatabaseSetup{DB: db}, true, nil
}

// TruncateAllTables removes all rows so each test starts clean
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tables := []string{
		"notifications",
		"payslips",
		"payroll_runs",
		"employee_salaries",
		"salary_structures",
		"leave_accrual_entries",
		"leave_accrual_runs",
		"leave_accrual_rules",
		"leave_requests",
		"leave_balances",
		"leave_types",
		"overtime_rules",
		"attendance_sessions",
		"attendance_records",
		"holidays",
		"employees",
		"companies",
	}

	_, err := t.DB.Exec(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE")
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// Seed inserts a company and one active employee
func (t *TestDatabaseSetup) Seed(ctx context.Context, companyID, employeeID string) error {
	if _, err := t.DB.Exec(ctx, `INSERT INTO companies (id, name, timezone) VALUES ($1, 'Acme', 'Asia/Jakarta')`, companyID); err != nil {
		return err
	}
	_, err := t.DB.Exec(ctx, `
		INSERT INTO employees (id, company_id, employee_code, full_name, hourly_rate, ot_multiplier)
		VALUES ($1, $2, 'E001', 'Ayu', 0, 1)
	`, employeeID, companyID)
	return err
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
