package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/handler/http/middleware"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/handler/http/response"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Runs
	CreateRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	CalculateRun(w http.ResponseWriter, r *http.Request)
	ResetRun(w http.ResponseWriter, r *http.Request)

	// Items
	ListItems(w http.ResponseWriter, r *http.Request)
	GetItem(w http.ResponseWriter, r *http.Request)
	AdjustItem(w http.ResponseWriter, r *http.Request)
	Payslip(w http.ResponseWriter, r *http.Request)

	// Preview
	PreviewEmployee(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// companyFromRequest returns the caller's company or writes 401.
func companyFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.CompanyID == "" {
		response.Unauthorized(w, "Unauthorized")
		return "", false
	}
	return claims.CompanyID, true
}

func runIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUIDv7(id) {
		response.BadRequest(w, "Invalid payroll run ID", nil)
		return "", false
	}
	return id, true
}

func employeeIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "employeeID")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid employee ID", nil)
		return "", false
	}
	return id, true
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) CreateRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}

	var req payroll.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreateRun(r.Context(), companyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run created", result)
}

func (h *payrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}

	var filter payroll.RunFilter
	query := r.URL.Query()

	if year := query.Get("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			response.BadRequest(w, "Invalid year", nil)
			return
		}
		filter.Year = &y
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = limit
	}

	result, err := h.payrollService.ListRuns(r.Context(), companyID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.GetRun(r.Context(), companyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) CalculateRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.CalculateRun(r.Context(), companyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ResetRun(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.ResetRun(r.Context(), companyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== ITEMS ==========

func (h *payrollHandlerImpl) ListItems(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.ListItems(r.Context(), companyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetItem(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.GetItem(r.Context(), companyID, runID, employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) AdjustItem(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	var req payroll.AdjustItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.RunID = runID
	req.EmployeeID = employeeID

	result, err := h.payrollService.AdjustItem(r.Context(), companyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) Payslip(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}
	employeeID, ok := employeeIDParam(w, r)
	if !ok {
		return
	}

	pdf, err := h.payrollService.Payslip(r.Context(), companyID, runID, employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Document(w, "application/pdf", fmt.Sprintf("payslip-%s.pdf", employeeID), pdf)
}

// ========== PREVIEW ==========

func (h *payrollHandlerImpl) PreviewEmployee(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}

	req := payroll.PreviewRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		YearMonth:  r.URL.Query().Get("year_month"),
	}

	result, err := h.payrollService.PreviewEmployee(r.Context(), companyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
