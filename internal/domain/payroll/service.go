package payroll

import "context"

// PayrollService defines run management on top of the calculation engine.
// companyID comes from the caller's token and scopes every operation.
type PayrollService interface {
	CreateRun(ctx context.Context, companyID string, req CreateRunRequest) (RunResponse, error)
	GetRun(ctx context.Context, companyID, runID string) (RunResponse, error)
	ListRuns(ctx context.Context, companyID string, filter RunFilter) (ListRunResponse, error)

	// CalculateRun prices every eligible employee and moves the run DRAFT -> REVIEW.
	CalculateRun(ctx context.Context, companyID, runID string) (RunResponse, error)

	// ResetRun moves a REVIEW run back to DRAFT so it can be recalculated.
	ResetRun(ctx context.Context, companyID, runID string) (RunResponse, error)

	ListItems(ctx context.Context, companyID, runID string) ([]ItemResponse, error)
	GetItem(ctx context.Context, companyID, runID, employeeID string) (ItemResponse, error)
	AdjustItem(ctx context.Context, companyID string, req AdjustItemRequest) (ItemResponse, error)

	// PreviewEmployee computes one employee's month without writing anything.
	PreviewEmployee(ctx context.Context, companyID string, req PreviewRequest) (PayDetail, error)

	// Payslip renders one item of a run as a PDF document.
	Payslip(ctx context.Context, companyID, runID, employeeID string) ([]byte, error)
}
