package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/database"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/outbox"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

const runColumns = `
	id, company_id, year_month, period_start, period_end, status, headcount,
	total_gross, total_deductions, total_net, calculated_at, created_at, updated_at`

const itemColumns = `
	i.run_id, i.employee_id, i.base_salary, i.overtime_pay, i.bonus, i.allowances,
	i.gross_pay, i.deductions, i.net_pay, i.currency, i.detail,
	i.is_manually_adjusted, i.adjustment_reason, i.created_at, i.updated_at`

// PayrollRepository stores runs and items. It is the run repository, the
// commit sink and the source of PAID history for severance.
type PayrollRepository struct {
	db          *database.DB
	outbox      *OutboxRepository
	outboxTopic string
}

func NewPayrollRepository(db *database.DB, outbox *OutboxRepository, outboxTopic string) *PayrollRepository {
	return &PayrollRepository{db: db, outbox: outbox, outboxTopic: outboxTopic}
}

var (
	_ payroll.RunRepository       = (*PayrollRepository)(nil)
	_ payroll.PayrollSink         = (*PayrollRepository)(nil)
	_ payroll.PaidPayrollProvider = (*PayrollRepository)(nil)
)

// ========== RUNS ==========

func (r *PayrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (
			id, company_id, year_month, period_start, period_end, status,
			headcount, total_gross, total_deductions, total_net
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query,
		run.ID, run.CompanyID, run.YearMonth, run.PeriodStart, run.PeriodEnd, run.Status,
		run.Headcount, run.TotalGross, run.TotalDeductions, run.TotalNet,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return created, nil
}

func (r *PayrollRepository) GetRun(ctx context.Context, runID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1`

	run, err := scanRun(q.QueryRow(ctx, query, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

func (r *PayrollRepository) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"company_id = $1"}
	args := []any{companyID}
	argIdx := 2

	if filter.Year != nil {
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM period_start) = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM payroll_runs WHERE ` + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM payroll_runs WHERE %s ORDER BY year_month DESC LIMIT $%d OFFSET $%d`,
		runColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}

	return runs, total, nil
}

func (r *PayrollRepository) TransitionStatus(ctx context.Context, runID string, from, to payroll.RunStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, runID, from, to)
	if err != nil {
		return fmt.Errorf("failed to update payroll run status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payroll_runs WHERE id = $1)`, runID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check payroll run: %w", err)
	}
	if !exists {
		return payroll.ErrRunNotFound
	}
	return payroll.ErrRunStatusConflict
}

func (r *PayrollRepository) RevertStaleRuns(ctx context.Context, cutoff time.Time) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND updated_at < $3
		RETURNING ` + runColumns

	rows, err := q.Query(ctx, query, payroll.RunStatusDraft, payroll.RunStatusCalculating, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to revert stale payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}

	return runs, nil
}

// ========== ITEMS ==========

func (r *PayrollRepository) ListItems(ctx context.Context, runID string) ([]payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + itemColumns + `, e.full_name
		FROM payroll_items i
		LEFT JOIN employees e ON e.id = i.employee_id
		WHERE i.run_id = $1
		ORDER BY i.employee_id
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll items: %w", err)
	}
	defer rows.Close()

	var items []payroll.PayrollItem
	for rows.Next() {
		item, err := scanItem(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll items: %w", err)
	}

	return items, nil
}

func (r *PayrollRepository) GetItem(ctx context.Context, runID, employeeID string) (payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + itemColumns + `, e.full_name
		FROM payroll_items i
		LEFT JOIN employees e ON e.id = i.employee_id
		WHERE i.run_id = $1 AND i.employee_id = $2
	`

	item, err := scanItem(q.QueryRow(ctx, query, runID, employeeID), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollItem{}, payroll.ErrItemNotFound
		}
		return payroll.PayrollItem{}, fmt.Errorf("failed to get payroll item: %w", err)
	}
	return item, nil
}

func (r *PayrollRepository) SaveAdjustedItem(ctx context.Context, item payroll.PayrollItem) (payroll.PayrollRun, error) {
	detail, err := json.Marshal(item.Detail)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to encode pay detail: %w", err)
	}

	var updated payroll.PayrollRun
	err = WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var status payroll.RunStatus
		err := tx.QueryRow(ctx, `SELECT status FROM payroll_runs WHERE id = $1 FOR UPDATE`, item.RunID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return payroll.ErrRunNotFound
			}
			return fmt.Errorf("failed to lock payroll run: %w", err)
		}
		if status != payroll.RunStatusReview {
			return payroll.ErrRunNotInReview
		}

		tag, err := tx.Exec(ctx, `
			UPDATE payroll_items
			SET base_salary = $3, overtime_pay = $4, bonus = $5, allowances = $6,
				gross_pay = $7, deductions = $8, net_pay = $9, detail = $10,
				is_manually_adjusted = $11, adjustment_reason = $12, updated_at = NOW()
			WHERE run_id = $1 AND employee_id = $2
		`,
			item.RunID, item.EmployeeID, item.BaseSalary, item.OvertimePay, item.Bonus, item.Allowances,
			item.GrossPay, item.Deductions, item.NetPay, detail,
			item.IsManuallyAdjusted, item.AdjustmentReason,
		)
		if err != nil {
			return fmt.Errorf("failed to update payroll item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return payroll.ErrItemNotFound
		}

		// Totals are always re-derived from the items, never patched.
		updated, err = scanRun(tx.QueryRow(ctx, `
			UPDATE payroll_runs r
			SET headcount = s.headcount,
				total_gross = s.total_gross,
				total_deductions = s.total_deductions,
				total_net = s.total_net,
				updated_at = NOW()
			FROM (
				SELECT COUNT(*) AS headcount,
					   COALESCE(SUM(gross_pay), 0) AS total_gross,
					   COALESCE(SUM(deductions), 0) AS total_deductions,
					   COALESCE(SUM(net_pay), 0) AS total_net
				FROM payroll_items
				WHERE run_id = $1
			) s
			WHERE r.id = $1
			RETURNING r.id, r.company_id, r.year_month, r.period_start, r.period_end, r.status, r.headcount,
				r.total_gross, r.total_deductions, r.total_net, r.calculated_at, r.created_at, r.updated_at
		`, item.RunID))
		if err != nil {
			return fmt.Errorf("failed to update payroll run totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	return updated, nil
}

// ========== COMMIT ==========

// CommitRun implements payroll.PayrollSink.
func (r *PayrollRepository) CommitRun(ctx context.Context, runID string, items []payroll.PayrollItem, totals payroll.RunTotals) error {
	employeeIDs := make([]string, 0, len(items))
	for _, item := range items {
		employeeIDs = append(employeeIDs, item.EmployeeID)
	}

	return WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		// Items of employees that left the population would otherwise survive in the totals.
		_, err := tx.Exec(ctx, `
			DELETE FROM payroll_items
			WHERE run_id = $1 AND NOT (employee_id::text = ANY($2::text[]))
		`, runID, employeeIDs)
		if err != nil {
			return fmt.Errorf("failed to delete stale payroll items: %w", err)
		}

		batch := &pgx.Batch{}
		for _, item := range items {
			detail, err := json.Marshal(item.Detail)
			if err != nil {
				return fmt.Errorf("failed to encode pay detail for %s: %w", item.EmployeeID, err)
			}
			batch.Queue(`
				INSERT INTO payroll_items (
					run_id, employee_id, base_salary, overtime_pay, bonus, allowances,
					gross_pay, deductions, net_pay, currency, detail,
					is_manually_adjusted, adjustment_reason
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, NULL)
				ON CONFLICT (run_id, employee_id) DO UPDATE SET
					base_salary = EXCLUDED.base_salary,
					overtime_pay = EXCLUDED.overtime_pay,
					bonus = EXCLUDED.bonus,
					allowances = EXCLUDED.allowances,
					gross_pay = EXCLUDED.gross_pay,
					deductions = EXCLUDED.deductions,
					net_pay = EXCLUDED.net_pay,
					currency = EXCLUDED.currency,
					detail = EXCLUDED.detail,
					is_manually_adjusted = false,
					adjustment_reason = NULL,
					updated_at = NOW()
			`,
				runID, item.EmployeeID, item.BaseSalary, item.OvertimePay, item.Bonus, item.Allowances,
				item.GrossPay, item.Deductions, item.NetPay, item.Currency, detail,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert payroll items: %w", err)
		}

		var companyID, yearMonth string
		var calculatedAt time.Time
		err = tx.QueryRow(ctx, `
			UPDATE payroll_runs
			SET status = $2, headcount = $3, total_gross = $4, total_deductions = $5, total_net = $6,
				calculated_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $7
			RETURNING company_id, year_month, calculated_at
		`,
			runID, payroll.RunStatusReview, totals.Headcount,
			totals.TotalGross, totals.TotalDeductions, totals.TotalNet,
			payroll.RunStatusCalculating,
		).Scan(&companyID, &yearMonth, &calculatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return payroll.ErrRunStatusConflict
			}
			return fmt.Errorf("failed to finalize payroll run: %w", err)
		}

		return r.enqueueReviewed(ctx, runID, companyID, yearMonth, totals, calculatedAt)
	})
}

func (r *PayrollRepository) enqueueReviewed(ctx context.Context, runID, companyID, yearMonth string, totals payroll.RunTotals, at time.Time) error {
	if r.outbox == nil {
		return nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate outbox id: %w", err)
	}
	payload, err := json.Marshal(payroll.RunReviewedEvent{
		EventID:         id.String(),
		EventType:       payroll.OutboxEventRunReviewed,
		RunID:           runID,
		CompanyID:       companyID,
		YearMonth:       yearMonth,
		Headcount:       totals.Headcount,
		TotalGross:      totals.TotalGross,
		TotalDeductions: totals.TotalDeductions,
		TotalNet:        totals.TotalNet,
		OccurredAt:      at.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode run reviewed event: %w", err)
	}

	return r.outbox.Create(ctx, outbox.Event{
		ID:            id.String(),
		AggregateType: payroll.AggregateTypeRun,
		AggregateID:   runID,
		EventType:     payroll.OutboxEventRunReviewed,
		Topic:         r.outboxTopic,
		Payload:       payload,
		Status:        outbox.StatusPending,
	})
}

// ========== PAID HISTORY ==========

// PaidItemForMonth implements payroll.PaidPayrollProvider.
func (r *PayrollRepository) PaidItemForMonth(ctx context.Context, employeeID, companyID, yearMonth string) (*payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + itemColumns + `
		FROM payroll_items i
		JOIN payroll_runs r ON r.id = i.run_id
		WHERE i.employee_id = $1
		  AND r.company_id = $2
		  AND r.year_month = $3
		  AND r.status = $4
		LIMIT 1
	`

	item, err := scanItem(q.QueryRow(ctx, query, employeeID, companyID, yearMonth, payroll.RunStatusPaid), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get paid payroll item: %w", err)
	}
	return &item, nil
}

// ========== SCANNING ==========

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(
		&run.ID, &run.CompanyID, &run.YearMonth, &run.PeriodStart, &run.PeriodEnd, &run.Status, &run.Headcount,
		&run.TotalGross, &run.TotalDeductions, &run.TotalNet, &run.CalculatedAt, &run.CreatedAt, &run.UpdatedAt,
	)
	return run, err
}

func scanItem(row pgx.Row, withName bool) (payroll.PayrollItem, error) {
	var item payroll.PayrollItem
	var detail []byte
	dest := []any{
		&item.RunID, &item.EmployeeID, &item.BaseSalary, &item.OvertimePay, &item.Bonus, &item.Allowances,
		&item.GrossPay, &item.Deductions, &item.NetPay, &item.Currency, &detail,
		&item.IsManuallyAdjusted, &item.AdjustmentReason, &item.CreatedAt, &item.UpdatedAt,
	}
	if withName {
		dest = append(dest, &item.EmployeeName)
	}
	if err := row.Scan(dest...); err != nil {
		return payroll.PayrollItem{}, err
	}
	if err := json.Unmarshal(detail, &item.Detail); err != nil {
		return payroll.PayrollItem{}, fmt.Errorf("decode pay detail: %w", err)
	}
	return item, nil
}
