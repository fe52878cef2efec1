package postgresql

import (
	"context"
	"fmt"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/database"
)

type allowanceRepository struct {
	db *database.DB
}

func NewAllowanceRepository(db *database.DB) payroll.AllowanceProvider {
	return &allowanceRepository{db: db}
}

// AllowanceRecords implements payroll.AllowanceProvider.
func (r *allowanceRepository) AllowanceRecords(ctx context.Context, employeeID, companyID, yearMonth string) ([]payroll.AllowanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT allowance_type, amount
		FROM allowance_records
		WHERE employee_id = $1
		  AND company_id = $2
		  AND year_month = $3
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, yearMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to list allowance records: %w", err)
	}
	defer rows.Close()

	var records []payroll.AllowanceRecord
	for rows.Next() {
		var rec payroll.AllowanceRecord
		if err := rows.Scan(&rec.AllowanceType, &rec.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan allowance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allowance records: %w", err)
	}

	return records, nil
}
