package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrRunNotFound       = errors.New("payroll run not found")
	ErrRunAlreadyExists  = errors.New("payroll run already exists for this period")
	ErrRunNotDraft       = errors.New("payroll run is not in DRAFT status")
	ErrRunNotInReview    = errors.New("payroll run is not in REVIEW status")
	ErrRunStatusConflict = errors.New("payroll run status changed concurrently")
	ErrItemNotFound      = errors.New("payroll item not found")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrInvalidPeriod     = errors.New("invalid payroll period")
)

// EmployeeCalculationError names the employee whose calculation aborted a batch.
type EmployeeCalculationError struct {
	EmployeeID string
	Err        error
}

func (e *EmployeeCalculationError) Error() string {
	return fmt.Sprintf("calculate payroll for employee %s: %v", e.EmployeeID, e.Err)
}

func (e *EmployeeCalculationError) Unwrap() error {
	return e.Err
}
