package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) payroll.AttendanceProvider {
	return &attendanceRepository{db: db}
}

// AttendanceInRange implements payroll.AttendanceProvider. Both bounds are inclusive
// and only days with overtime are returned.
func (a *attendanceRepository) AttendanceInRange(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT date, overtime_minutes, COALESCE(work_type, '')
		FROM attendances
		WHERE employee_id = $1
		  AND company_id = $2
		  AND date BETWEEN $3 AND $4
		  AND overtime_minutes > 0
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []payroll.AttendanceRecord
	for rows.Next() {
		var rec payroll.AttendanceRecord
		if err := rows.Scan(&rec.Date, &rec.OvertimeMinutes, &rec.WorkType); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}

	return records, nil
}
