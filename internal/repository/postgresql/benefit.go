package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/database"
)

type benefitRepository struct {
	db *database.DB
}

func NewBenefitRepository(db *database.DB) payroll.BenefitProvider {
	return &benefitRepository{db: db}
}

// ActiveMonthlyBenefits implements payroll.BenefitProvider. An enrollment counts
// when its policy window covers the whole period.
func (r *benefitRepository) ActiveMonthlyBenefits(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.BenefitAmount, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT bp.category, be.monthly_amount
		FROM benefit_enrollments be
		JOIN benefit_policies bp ON bp.id = be.policy_id
		WHERE be.employee_id = $1
		  AND be.company_id = $2
		  AND be.status = 'ACTIVE'
		  AND bp.frequency = 'MONTHLY'
		  AND bp.effective_from <= $3
		  AND (bp.effective_to IS NULL OR bp.effective_to >= $4)
		ORDER BY be.created_at
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list benefit enrollments: %w", err)
	}
	defer rows.Close()

	var amounts []payroll.BenefitAmount
	for rows.Next() {
		var b payroll.BenefitAmount
		if err := rows.Scan(&b.Category, &b.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan benefit enrollment: %w", err)
		}
		amounts = append(amounts, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate benefit enrollments: %w", err)
	}

	return amounts, nil
}
