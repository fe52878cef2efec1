package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	YearMonth string `json:"year_month"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.YearMonth) {
		errs.Add("year_month", "is required")
	} else if !validator.IsValidYearMonth(r.YearMonth) {
		errs.Add("year_month", "must be in YYYY-MM format")
	}

	return errs.Err()
}

type RunFilter struct {
	Year   *int    `json:"year,omitempty"`
	Status *string `json:"status,omitempty"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

func (f *RunFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Year != nil && (*f.Year < 2000 || *f.Year > 2100) {
		errs.Add("year", "must be between 2000 and 2100")
	}
	if f.Status != nil && !RunStatus(*f.Status).Valid() {
		errs.Add("status", "must be one of DRAFT, CALCULATING, REVIEW, PAID")
	}

	return errs.Err()
}

type RunResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	YearMonth       string          `json:"year_month"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	Status          RunStatus       `json:"status"`
	Headcount       int             `json:"headcount"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	CalculatedAt    *string         `json:"calculated_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

func ToRunResponse(run PayrollRun) RunResponse {
	resp := RunResponse{
		ID:              run.ID,
		CompanyID:       run.CompanyID,
		YearMonth:       run.YearMonth,
		PeriodStart:     run.PeriodStart.Format("2006-01-02"),
		PeriodEnd:       run.PeriodEnd.Format("2006-01-02"),
		Status:          run.Status,
		Headcount:       run.Headcount,
		TotalGross:      run.TotalGross,
		TotalDeductions: run.TotalDeductions,
		TotalNet:        run.TotalNet,
		CreatedAt:       run.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       run.UpdatedAt.Format(time.RFC3339),
	}
	if run.CalculatedAt != nil {
		s := run.CalculatedAt.Format(time.RFC3339)
		resp.CalculatedAt = &s
	}
	return resp
}

type ListRunResponse struct {
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
	Runs       []RunResponse `json:"runs"`
}

// ========== ITEM DTOs ==========

type ItemResponse struct {
	RunID              string          `json:"run_id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       *string         `json:"employee_name,omitempty"`
	BaseSalary         decimal.Decimal `json:"base_salary"`
	OvertimePay        decimal.Decimal `json:"overtime_pay"`
	Bonus              decimal.Decimal `json:"bonus"`
	Allowances         decimal.Decimal `json:"allowances"`
	GrossPay           decimal.Decimal `json:"gross_pay"`
	Deductions         decimal.Decimal `json:"deductions"`
	NetPay             decimal.Decimal `json:"net_pay"`
	Currency           string          `json:"currency"`
	Detail             PayDetail       `json:"detail"`
	IsManuallyAdjusted bool            `json:"is_manually_adjusted"`
	AdjustmentReason   *string         `json:"adjustment_reason,omitempty"`
	UpdatedAt          string          `json:"updated_at"`
}

func ToItemResponse(item PayrollItem) ItemResponse {
	return ItemResponse{
		RunID:              item.RunID,
		EmployeeID:         item.EmployeeID,
		EmployeeName:       item.EmployeeName,
		BaseSalary:         item.BaseSalary,
		OvertimePay:        item.OvertimePay,
		Bonus:              item.Bonus,
		Allowances:         item.Allowances,
		GrossPay:           item.GrossPay,
		Deductions:         item.Deductions,
		NetPay:             item.NetPay,
		Currency:           item.Currency,
		Detail:             item.Detail,
		IsManuallyAdjusted: item.IsManuallyAdjusted,
		AdjustmentReason:   item.AdjustmentReason,
		UpdatedAt:          item.UpdatedAt.Format(time.RFC3339),
	}
}

const maxAdjustmentReason = 500

// AdjustItemRequest overrides the bonus and other-deduction lines of one item.
// Omitted fields keep their computed value.
type AdjustItemRequest struct {
	RunID           string           `json:"-"`
	EmployeeID      string           `json:"-"`
	Bonus           *decimal.Decimal `json:"bonus,omitempty"`
	OtherDeductions *decimal.Decimal `json:"other_deductions,omitempty"`
	Reason          string           `json:"reason"`
}

func (r *AdjustItemRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RunID) {
		errs.Add("run_id", "is required")
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "is required")
	}
	if r.Bonus == nil && r.OtherDeductions == nil {
		errs.Add("bonus", "bonus or other_deductions is required")
	}
	if !validator.IsNonNegativeAmount(r.Bonus) {
		errs.Add("bonus", "must be non-negative")
	}
	if !validator.IsNonNegativeAmount(r.OtherDeductions) {
		errs.Add("other_deductions", "must be non-negative")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "is required")
	} else if validator.ExceedsLength(strings.TrimSpace(r.Reason), maxAdjustmentReason) {
		errs.Add("reason", fmt.Sprintf("must be at most %d characters", maxAdjustmentReason))
	}

	return errs.Err()
}

// ========== PREVIEW DTOs ==========

type PreviewRequest struct {
	EmployeeID string `json:"employee_id"`
	YearMonth  string `json:"year_month"`
}

func (r *PreviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "must be a valid UUID")
	}
	if !validator.IsValidYearMonth(r.YearMonth) {
		errs.Add("year_month", "must be in YYYY-MM format")
	}

	return errs.Err()
}
