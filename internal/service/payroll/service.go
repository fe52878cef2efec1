package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/payslip"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/ratetable"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	runs         payroll.RunRepository
	employees    payroll.EmployeeProvider
	calculator   EmployeeCalculator
	orchestrator *Orchestrator
	rates        *ratetable.Registry
	events       EventPublisher
}

func NewPayrollService(
	runs payroll.RunRepository,
	employees payroll.EmployeeProvider,
	calculator EmployeeCalculator,
	orchestrator *Orchestrator,
	rates *ratetable.Registry,
	events EventPublisher,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		runs:         runs,
		employees:    employees,
		calculator:   calculator,
		orchestrator: orchestrator,
		rates:        rates,
		events:       events,
	}
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, companyID string, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	start, end, err := payroll.MonthPeriod(req.YearMonth)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("generate run id: %w", err)
	}

	run, err := s.runs.CreateRun(ctx, payroll.PayrollRun{
		ID:              id.String(),
		CompanyID:       companyID,
		YearMonth:       req.YearMonth,
		PeriodStart:     start,
		PeriodEnd:       end,
		Status:          payroll.RunStatusDraft,
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	slog.Info("Payroll run created", "run_id", run.ID, "company_id", companyID, "year_month", run.YearMonth)
	return payroll.ToRunResponse(run), nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, companyID, runID string) (payroll.RunResponse, error) {
	run, err := s.getOwnedRun(ctx, companyID, runID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return payroll.ToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) (payroll.ListRunResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListRunResponse{}, err
	}

	runs, total, err := s.runs.ListRuns(ctx, companyID, filter)
	if err != nil {
		return payroll.ListRunResponse{}, err
	}

	resp := payroll.ListRunResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Runs:       make([]payroll.RunResponse, 0, len(runs)),
	}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, payroll.ToRunResponse(run))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) CalculateRun(ctx context.Context, companyID, runID string) (payroll.RunResponse, error) {
	if _, err := s.getOwnedRun(ctx, companyID, runID); err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.orchestrator.RunBatch(ctx, runID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return payroll.ToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ResetRun(ctx context.Context, companyID, runID string) (payroll.RunResponse, error) {
	run, err := s.getOwnedRun(ctx, companyID, runID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	if run.Status != payroll.RunStatusReview {
		return payroll.RunResponse{}, payroll.ErrRunNotInReview
	}

	if err := s.runs.TransitionStatus(ctx, runID, payroll.RunStatusReview, payroll.RunStatusDraft); err != nil {
		if errors.Is(err, payroll.ErrRunStatusConflict) {
			return payroll.RunResponse{}, payroll.ErrRunNotInReview
		}
		return payroll.RunResponse{}, err
	}

	run, err = s.runs.GetRun(ctx, runID)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	slog.Info("Payroll run reset to draft", "run_id", runID, "company_id", companyID)
	s.publish(run, payroll.EventRunReverted)
	return payroll.ToRunResponse(run), nil
}

// ========== ITEMS ==========

func (s *PayrollServiceImpl) ListItems(ctx context.Context, companyID, runID string) ([]payroll.ItemResponse, error) {
	if _, err := s.getOwnedRun(ctx, companyID, runID); err != nil {
		return nil, err
	}

	items, err := s.runs.ListItems(ctx, runID)
	if err != nil {
		return nil, err
	}

	resp := make([]payroll.ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, payroll.ToItemResponse(item))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) GetItem(ctx context.Context, companyID, runID, employeeID string) (payroll.ItemResponse, error) {
	if _, err := s.getOwnedRun(ctx, companyID, runID); err != nil {
		return payroll.ItemResponse{}, err
	}

	item, err := s.runs.GetItem(ctx, runID, employeeID)
	if err != nil {
		return payroll.ItemResponse{}, err
	}
	return payroll.ToItemResponse(item), nil
}

// AdjustItem overrides the bonus and other-deduction lines of a REVIEW item,
// reprices its statutory deductions and re-derives the run totals.
func (s *PayrollServiceImpl) AdjustItem(ctx context.Context, companyID string, req payroll.AdjustItemRequest) (payroll.ItemResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ItemResponse{}, err
	}

	run, err := s.getOwnedRun(ctx, companyID, req.RunID)
	if err != nil {
		return payroll.ItemResponse{}, err
	}
	if run.Status != payroll.RunStatusReview {
		return payroll.ItemResponse{}, payroll.ErrRunNotInReview
	}

	item, err := s.runs.GetItem(ctx, req.RunID, req.EmployeeID)
	if err != nil {
		return payroll.ItemResponse{}, err
	}

	detail := item.Detail
	if req.Bonus != nil {
		detail.Earnings.Bonuses = *req.Bonus
	}
	if req.OtherDeductions != nil {
		detail.Deductions.Other = *req.OtherDeductions
	}
	detail, err = Reprice(s.rates, detail)
	if err != nil {
		return payroll.ItemResponse{}, err
	}

	adjusted := payroll.NewPayrollItem(item.RunID, item.Currency, detail)
	adjusted.EmployeeID = item.EmployeeID
	reason := strings.TrimSpace(req.Reason)
	adjusted.IsManuallyAdjusted = true
	adjusted.AdjustmentReason = &reason

	updatedRun, err := s.runs.SaveAdjustedItem(ctx, adjusted)
	if err != nil {
		return payroll.ItemResponse{}, err
	}

	slog.Info("Payroll item adjusted",
		"run_id", req.RunID,
		"employee_id", req.EmployeeID,
		"gross_pay", adjusted.GrossPay.String(),
		"net_pay", adjusted.NetPay.String())
	s.publish(updatedRun, payroll.EventRunReviewed)

	saved, err := s.runs.GetItem(ctx, req.RunID, req.EmployeeID)
	if err != nil {
		return payroll.ItemResponse{}, err
	}
	return payroll.ToItemResponse(saved), nil
}

// ========== PREVIEW & PAYSLIP ==========

func (s *PayrollServiceImpl) PreviewEmployee(ctx context.Context, companyID string, req payroll.PreviewRequest) (payroll.PayDetail, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayDetail{}, err
	}

	emp, err := s.employees.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return payroll.PayDetail{}, err
	}
	if emp.CompanyID != companyID {
		return payroll.PayDetail{}, payroll.ErrEmployeeNotFound
	}

	start, end, err := payroll.MonthPeriod(req.YearMonth)
	if err != nil {
		return payroll.PayDetail{}, err
	}
	return s.calculator.Calculate(ctx, emp.ID, start, end, companyID)
}

func (s *PayrollServiceImpl) Payslip(ctx context.Context, companyID, runID, employeeID string) ([]byte, error) {
	run, err := s.getOwnedRun(ctx, companyID, runID)
	if err != nil {
		return nil, err
	}

	item, err := s.runs.GetItem(ctx, runID, employeeID)
	if err != nil {
		return nil, err
	}

	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	return payslip.Render(payslip.Document{
		Run:          run,
		Item:         item,
		EmployeeName: emp.FullName,
		EmployeeCode: emp.EmployeeCode,
	})
}

// getOwnedRun hides runs of other companies behind ErrRunNotFound.
func (s *PayrollServiceImpl) getOwnedRun(ctx context.Context, companyID, runID string) (payroll.PayrollRun, error) {
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if run.CompanyID != companyID {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (s *PayrollServiceImpl) publish(run payroll.PayrollRun, event string) {
	if s.events == nil {
		return
	}
	s.events.Publish(run.CompanyID, sseEvent(run, event))
}
