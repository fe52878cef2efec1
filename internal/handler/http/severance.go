package http

import (
	"encoding/json"
	"net/http"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/severance"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/handler/http/response"
)

type SeveranceHandler interface {
	Calculate(w http.ResponseWriter, r *http.Request)
}

type severanceHandlerImpl struct {
	severanceService severance.SeveranceService
}

func NewSeveranceHandler(severanceService severance.SeveranceService) SeveranceHandler {
	return &severanceHandlerImpl{severanceService: severanceService}
}

func (h *severanceHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromRequest(w, r)
	if !ok {
		return
	}

	var req severance.CalculateSeveranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.severanceService.CalculateSeverance(r.Context(), companyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
