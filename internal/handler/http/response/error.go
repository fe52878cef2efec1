package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/severance"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/jwt"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/ratetable"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var calcErr *payroll.EmployeeCalculationError

	switch {
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid token")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrItemNotFound):
		NotFound(w, "Payroll item not found")
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrRunAlreadyExists):
		Conflict(w, "A payroll run already exists for this month")
	case errors.Is(err, payroll.ErrRunNotDraft):
		Conflict(w, "Payroll run is not in DRAFT status")
	case errors.Is(err, payroll.ErrRunNotInReview):
		Conflict(w, "Payroll run is not in REVIEW status")
	case errors.Is(err, payroll.ErrRunStatusConflict):
		Conflict(w, "Payroll run status changed concurrently")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		UnprocessableEntity(w, "Invalid payroll period")
	case errors.Is(err, ratetable.ErrNoRateTable):
		UnprocessableEntity(w, "No rate table covers the requested period")

	// Severance domain errors
	case errors.Is(err, severance.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, severance.ErrTerminationBeforeHire):
		UnprocessableEntity(w, "Termination date is before hire date")

	case errors.As(err, &calcErr):
		slog.Error("Payroll run calculation failed", "employee_id", calcErr.EmployeeID, "error", calcErr.Err)
		Error(w, http.StatusInternalServerError, "CALCULATION_FAILED",
			fmt.Sprintf("Payroll calculation failed for employee %s; run reverted to DRAFT", calcErr.EmployeeID),
			map[string]string{"employee_id": calcErr.EmployeeID})

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
