package severance

import "context"

type SeveranceService interface {
	// CalculateSeverance reports the statutory severance owed to an employee of
	// companyID leaving on the requested date. Ineligible employees get a
	// zero-valued detail, not an error.
	CalculateSeverance(ctx context.Context, companyID string, req CalculateSeveranceRequest) (SeveranceDetail, error)
}
