package cron

import (
	"context"
	"time"
)

// StaleRunRecoverer reverts payroll runs abandoned mid-calculation.
type StaleRunRecoverer interface {
	RecoverStaleRuns(ctx context.Context) error
}

// PayrollJobs contains payroll-related cron jobs
type PayrollJobs struct {
	recovery StaleRunRecoverer
	interval time.Duration
}

// NewPayrollJobs creates payroll cron jobs
func NewPayrollJobs(recovery StaleRunRecoverer, interval time.Duration) *PayrollJobs {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &PayrollJobs{
		recovery: recovery,
		interval: interval,
	}
}

// RegisterJobs registers all payroll-related cron jobs
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("recover_stale_payroll_runs", j.interval, j.RecoverStaleRuns)
}

// RecoverStaleRuns moves runs stuck in CALCULATING back to DRAFT
func (j *PayrollJobs) RecoverStaleRuns(ctx context.Context) error {
	return j.recovery.RecoverStaleRuns(ctx)
}
