package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

const DefaultBatchSize = 10

// EventPublisher receives run status changes; *sse.Hub satisfies it.
type EventPublisher interface {
	Publish(companyID string, event sse.Event)
}

type OrchestratorConfig struct {
	BatchSize int
	Currency  string
}

// Orchestrator computes a whole run: DRAFT -> CALCULATING -> REVIEW, or back
// to DRAFT when anything fails.
type Orchestrator struct {
	runs       payroll.RunRepository
	employees  payroll.EmployeeProvider
	calculator EmployeeCalculator
	sink       payroll.PayrollSink
	events     EventPublisher
	batchSize  int
	currency   string
}

func NewOrchestrator(
	runs payroll.RunRepository,
	employees payroll.EmployeeProvider,
	calculator EmployeeCalculator,
	sink payroll.PayrollSink,
	events EventPublisher,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Currency == "" {
		cfg.Currency = "KRW"
	}
	return &Orchestrator{
		runs:       runs,
		employees:  employees,
		calculator: calculator,
		sink:       sink,
		events:     events,
		batchSize:  cfg.BatchSize,
		currency:   cfg.Currency,
	}
}

// RunBatch prices every eligible employee of the run and commits all items
// in one transaction. Any failure leaves the run in DRAFT with its previous items.
func (o *Orchestrator) RunBatch(ctx context.Context, runID string) (payroll.PayrollRun, error) {
	run, err := o.runs.GetRun(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if run.Status != payroll.RunStatusDraft {
		return payroll.PayrollRun{}, fmt.Errorf("%w: run %s is %s", payroll.ErrRunNotDraft, runID, run.Status)
	}

	// The conditional transition is the lock: a concurrent start loses here.
	if err := o.runs.TransitionStatus(ctx, runID, payroll.RunStatusDraft, payroll.RunStatusCalculating); err != nil {
		if errors.Is(err, payroll.ErrRunStatusConflict) {
			return payroll.PayrollRun{}, fmt.Errorf("%w: run %s", payroll.ErrRunNotDraft, runID)
		}
		return payroll.PayrollRun{}, fmt.Errorf("start calculation: %w", err)
	}
	run.Status = payroll.RunStatusCalculating
	o.publish(run, payroll.EventRunCalculating)

	items, totals, err := o.calculateAll(ctx, run)
	if err == nil {
		err = o.sink.CommitRun(ctx, runID, items, totals)
	}
	if err != nil {
		return payroll.PayrollRun{}, o.revert(ctx, run, err)
	}

	slog.Info("Payroll run calculated",
		"run_id", runID,
		"company_id", run.CompanyID,
		"headcount", totals.Headcount,
		"total_gross", totals.TotalGross.String(),
		"total_net", totals.TotalNet.String())

	committed, err := o.runs.GetRun(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	o.publish(committed, payroll.EventRunReviewed)
	return committed, nil
}

func (o *Orchestrator) calculateAll(ctx context.Context, run payroll.PayrollRun) ([]payroll.PayrollItem, payroll.RunTotals, error) {
	var totals payroll.RunTotals

	employeeIDs, err := o.employees.ActiveEmployees(ctx, run.CompanyID, run.PeriodEnd)
	if err != nil {
		return nil, totals, fmt.Errorf("resolve population: %w", err)
	}

	slog.Info("Payroll run started",
		"run_id", run.ID,
		"company_id", run.CompanyID,
		"year_month", run.YearMonth,
		"headcount", len(employeeIDs),
		"batch_size", o.batchSize)

	items := make([]payroll.PayrollItem, len(employeeIDs))
	for start := 0; start < len(employeeIDs); start += o.batchSize {
		end := min(start+o.batchSize, len(employeeIDs))

		g, gCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				detail, err := o.calculator.Calculate(gCtx, employeeIDs[i], run.PeriodStart, run.PeriodEnd, run.CompanyID)
				if err != nil {
					return &payroll.EmployeeCalculationError{EmployeeID: employeeIDs[i], Err: err}
				}
				items[i] = payroll.NewPayrollItem(run.ID, o.currency, detail)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, totals, err
		}

		for i := start; i < end; i++ {
			totals.Add(items[i])
		}
		slog.Debug("Payroll wave completed", "run_id", run.ID, "done", end, "of", len(employeeIDs))
	}

	return items, totals, nil
}

// revert puts the run back to DRAFT with a context that outlives cancellation of ctx.
func (o *Orchestrator) revert(ctx context.Context, run payroll.PayrollRun, cause error) error {
	revertCtx := context.WithoutCancel(ctx)
	if err := o.runs.TransitionStatus(revertCtx, run.ID, payroll.RunStatusCalculating, payroll.RunStatusDraft); err != nil {
		slog.Error("Payroll run failed and could not be reverted",
			"run_id", run.ID,
			"company_id", run.CompanyID,
			"error", cause,
			"revert_error", err)
		return fmt.Errorf("%w (revert to draft failed: %v)", cause, err)
	}

	slog.Error("Payroll run failed, reverted to draft",
		"run_id", run.ID,
		"company_id", run.CompanyID,
		"error", cause)

	run.Status = payroll.RunStatusDraft
	o.publish(run, payroll.EventRunReverted)
	return cause
}

func (o *Orchestrator) publish(run payroll.PayrollRun, event string) {
	if o.events == nil {
		return
	}
	o.events.Publish(run.CompanyID, sseEvent(run, event))
}

func sseEvent(run payroll.PayrollRun, event string) sse.Event {
	return sse.Event{Event: event, Data: payroll.ToRunResponse(run)}
}
