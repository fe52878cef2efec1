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

type compensationRepository struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) payroll.CompensationProvider {
	return &compensationRepository{db: db}
}

// LatestCompensation implements payroll.CompensationProvider. No record is not an error.
func (r *compensationRepository) LatestCompensation(ctx context.Context, employeeID, companyID string, asOf time.Time) (*payroll.CompensationRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT annual_salary, effective_date
		FROM compensation_history
		WHERE employee_id = $1
		  AND company_id = $2
		  AND effective_date <= $3
		ORDER BY effective_date DESC, created_at DESC
		LIMIT 1
	`

	var rec payroll.CompensationRecord
	err := q.QueryRow(ctx, query, employeeID, companyID, asOf).Scan(&rec.AnnualSalary, &rec.EffectiveDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest compensation: %w", err)
	}
	return &rec, nil
}
