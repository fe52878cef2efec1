package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Run status events streamed to connected clients.
const (
	EventRunCalculating = "run.calculating"
	EventRunReviewed    = "run.reviewed"
	EventRunReverted    = "run.reverted"
)

// Outbox event published once a run reaches REVIEW.
const (
	AggregateTypeRun       = "payroll_run"
	OutboxEventRunReviewed = "payroll.run.reviewed"
)

// RunReviewedEvent is the outbox payload for a run that finished calculating.
type RunReviewedEvent struct {
	EventID         string          `json:"event_id"`
	EventType       string          `json:"event_type"`
	RunID           string          `json:"run_id"`
	CompanyID       string          `json:"company_id"`
	YearMonth       string          `json:"year_month"`
	Headcount       int             `json:"headcount"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	OccurredAt      time.Time       `json:"occurred_at"`
}
