package severance

import (
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/validator"
)

type CalculateSeveranceRequest struct {
	EmployeeID      string `json:"employee_id"`
	TerminationDate string `json:"termination_date"`
}

func (r *CalculateSeveranceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "must be a valid UUID")
	}
	if validator.IsEmpty(r.TerminationDate) {
		errs.Add("termination_date", "is required")
	} else if _, ok := validator.IsValidDate(r.TerminationDate); !ok {
		errs.Add("termination_date", "must be in YYYY-MM-DD format")
	}

	return errs.Err()
}

// Date returns the parsed termination date. Call Validate first.
func (r *CalculateSeveranceRequest) Date() time.Time {
	t, _ := time.Parse("2006-01-02", r.TerminationDate)
	return t
}
