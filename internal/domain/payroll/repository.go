package payroll

import (
	"context"
	"time"
)

// CompensationProvider returns nil, nil when the employee has no record effective by asOf.
type CompensationProvider interface {
	LatestCompensation(ctx context.Context, employeeID, companyID string, asOf time.Time) (*CompensationRecord, error)
}

type AttendanceProvider interface {
	AttendanceInRange(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]AttendanceRecord, error)
}

type AllowanceProvider interface {
	AllowanceRecords(ctx context.Context, employeeID, companyID, yearMonth string) ([]AllowanceRecord, error)
}

type BenefitProvider interface {
	ActiveMonthlyBenefits(ctx context.Context, employeeID, companyID string, periodStart, periodEnd time.Time) ([]BenefitAmount, error)
}

type EmployeeProvider interface {
	// ActiveEmployees lists ids of active employees hired on or before the given date.
	ActiveEmployees(ctx context.Context, companyID string, hiredOnOrBefore time.Time) ([]string, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
}

// PaidPayrollProvider returns nil, nil when no PAID run covers the month.
type PaidPayrollProvider interface {
	PaidItemForMonth(ctx context.Context, employeeID, companyID, yearMonth string) (*PayrollItem, error)
}

// PayrollSink persists a finished calculation. CommitRun must be atomic:
// items, totals and the REVIEW transition are written together or not at all.
type PayrollSink interface {
	CommitRun(ctx context.Context, runID string, items []PayrollItem, totals RunTotals) error
}

// RunRepository defines data access for runs and their items.
type RunRepository interface {
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRun(ctx context.Context, runID string) (PayrollRun, error)
	ListRuns(ctx context.Context, companyID string, filter RunFilter) ([]PayrollRun, int64, error)

	// TransitionStatus moves a run from one status to another and returns
	// ErrRunStatusConflict when the run is not currently in from.
	TransitionStatus(ctx context.Context, runID string, from, to RunStatus) error

	// RevertStaleRuns moves runs stuck in CALCULATING since before the cutoff back to DRAFT.
	RevertStaleRuns(ctx context.Context, cutoff time.Time) ([]PayrollRun, error)

	ListItems(ctx context.Context, runID string) ([]PayrollItem, error)
	GetItem(ctx context.Context, runID, employeeID string) (PayrollItem, error)

	// SaveAdjustedItem rewrites one item of a REVIEW run and re-derives the
	// run totals from its items in the same transaction.
	SaveAdjustedItem(ctx context.Context, item PayrollItem) (PayrollRun, error)
}
