package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
)

// StaleRunRecovery returns runs left in CALCULATING by a crashed process to DRAFT.
type StaleRunRecovery struct {
	runs   payroll.RunRepository
	events EventPublisher
	after  time.Duration
	now    func() time.Time
}

func NewStaleRunRecovery(runs payroll.RunRepository, events EventPublisher, after time.Duration) *StaleRunRecovery {
	return &StaleRunRecovery{
		runs:   runs,
		events: events,
		after:  after,
		now:    time.Now,
	}
}

// RecoverStaleRuns reverts every run that has been CALCULATING for longer than the threshold.
func (r *StaleRunRecovery) RecoverStaleRuns(ctx context.Context) error {
	cutoff := r.now().Add(-r.after)

	reverted, err := r.runs.RevertStaleRuns(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("revert stale runs: %w", err)
	}
	if len(reverted) == 0 {
		return nil
	}

	for _, run := range reverted {
		slog.Warn("Stale payroll run reverted to draft",
			"run_id", run.ID,
			"company_id", run.CompanyID,
			"year_month", run.YearMonth,
			"stuck_since", run.UpdatedAt)
		if r.events != nil {
			r.events.Publish(run.CompanyID, sseEvent(run, payroll.EventRunReverted))
		}
	}
	return nil
}
