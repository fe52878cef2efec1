package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employmentStatusActive = "active"

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) payroll.EmployeeProvider {
	return &employeeRepository{db: db}
}

// ActiveEmployees implements payroll.EmployeeProvider.
func (r *employeeRepository) ActiveEmployees(ctx context.Context, companyID string, hiredOnOrBefore time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id
		FROM employees
		WHERE company_id = $1
		  AND employment_status = $2
		  AND hire_date <= $3
		  AND deleted_at IS NULL
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, companyID, employmentStatusActive, hiredOnOrBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan active employees: %w", err)
	}
	return ids, nil
}

// GetEmployee implements payroll.EmployeeProvider.
func (r *employeeRepository) GetEmployee(ctx context.Context, employeeID string) (payroll.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, full_name, employee_code, hire_date, employment_status
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	var e payroll.Employee
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&e.ID, &e.CompanyID, &e.FullName, &e.EmployeeCode, &e.HireDate, &e.EmploymentStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Employee{}, payroll.ErrEmployeeNotFound
		}
		return payroll.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}
