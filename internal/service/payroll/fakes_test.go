package payroll

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/sse"
	"github.com/shopspring/decimal"
)

// ---- providers ----

type fakeCompensation struct {
	latestFn func(ctx context.Context, employeeID, companyID string, asOf time.Time) (*payroll.CompensationRecord, error)
}

func (f *fakeCompensation) LatestCompensation(ctx context.Context, employeeID, companyID string, asOf time.Time) (*payroll.CompensationRecord, error) {
	if f.latestFn == nil {
		return nil, nil
	}
	return f.latestFn(ctx, employeeID, companyID, asOf)
}

type fakeAttendance struct {
	rangeFn func(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.AttendanceRecord, error)
}

func (f *fakeAttendance) AttendanceInRange(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.AttendanceRecord, error) {
	if f.rangeFn == nil {
		return nil, nil
	}
	return f.rangeFn(ctx, employeeID, companyID, start, end)
}

type fakeAllowances struct {
	recordsFn func(ctx context.Context, employeeID, companyID, yearMonth string) ([]payroll.AllowanceRecord, error)
}

func (f *fakeAllowances) AllowanceRecords(ctx context.Context, employeeID, companyID, yearMonth string) ([]payroll.AllowanceRecord, error) {
	if f.recordsFn == nil {
		return nil, nil
	}
	return f.recordsFn(ctx, employeeID, companyID, yearMonth)
}

type fakeBenefits struct {
	activeFn func(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.BenefitAmount, error)
}

func (f *fakeBenefits) ActiveMonthlyBenefits(ctx context.Context, employeeID, companyID string, start, end time.Time) ([]payroll.BenefitAmount, error) {
	if f.activeFn == nil {
		return nil, nil
	}
	return f.activeFn(ctx, employeeID, companyID, start, end)
}

type fakeEmployees struct {
	activeFn func(ctx context.Context, companyID string, hiredOnOrBefore time.Time) ([]string, error)
	getFn    func(ctx context.Context, employeeID string) (payroll.Employee, error)
}

func (f *fakeEmployees) ActiveEmployees(ctx context.Context, companyID string, hiredOnOrBefore time.Time) ([]string, error) {
	if f.activeFn == nil {
		return nil, nil
	}
	return f.activeFn(ctx, companyID, hiredOnOrBefore)
}

func (f *fakeEmployees) GetEmployee(ctx context.Context, employeeID string) (payroll.Employee, error) {
	if f.getFn == nil {
		return payroll.Employee{}, payroll.ErrEmployeeNotFound
	}
	return f.getFn(ctx, employeeID)
}

type fakeCalculator struct {
	calculateFn func(ctx context.Context, employeeID string, start, end time.Time, companyID string) (payroll.PayDetail, error)
}

func (f *fakeCalculator) Calculate(ctx context.Context, employeeID string, start, end time.Time, companyID string) (payroll.PayDetail, error) {
	return f.calculateFn(ctx, employeeID, start, end, companyID)
}

// ---- events ----

type recordedEvents struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordedEvents) Publish(companyID string, event sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.CompanyID = companyID
	r.events = append(r.events, event)
}

func (r *recordedEvents) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Event)
	}
	return names
}

// ---- run store ----

// memoryStore is an in-memory RunRepository and PayrollSink with the same
// status guards as the Postgres implementation.
type memoryStore struct {
	mu        sync.Mutex
	runs      map[string]payroll.PayrollRun
	items     map[string]map[string]payroll.PayrollItem
	commitErr error
	commits   int
}

func newMemoryStore(runs ...payroll.PayrollRun) *memoryStore {
	s := &memoryStore{
		runs:  make(map[string]payroll.PayrollRun),
		items: make(map[string]map[string]payroll.PayrollItem),
	}
	for _, r := range runs {
		s.runs[r.ID] = r
	}
	return s
}

func (s *memoryStore) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.runs {
		if existing.CompanyID == run.CompanyID && existing.YearMonth == run.YearMonth {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
	}
	run.CreatedAt = time.Now()
	run.UpdatedAt = run.CreatedAt
	s.runs[run.ID] = run
	return run, nil
}

func (s *memoryStore) GetRun(ctx context.Context, runID string) (payroll.PayrollRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (s *memoryStore) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []payroll.PayrollRun
	for _, run := range s.runs {
		if run.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && string(run.Status) != *filter.Status {
			continue
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].YearMonth > out[j].YearMonth })
	return out, int64(len(out)), nil
}

func (s *memoryStore) TransitionStatus(ctx context.Context, runID string, from, to payroll.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return payroll.ErrRunNotFound
	}
	if run.Status != from {
		return payroll.ErrRunStatusConflict
	}
	run.Status = to
	run.UpdatedAt = time.Now()
	s.runs[runID] = run
	return nil
}

func (s *memoryStore) RevertStaleRuns(ctx context.Context, cutoff time.Time) ([]payroll.PayrollRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reverted []payroll.PayrollRun
	for id, run := range s.runs {
		if run.Status == payroll.RunStatusCalculating && run.UpdatedAt.Before(cutoff) {
			run.Status = payroll.RunStatusDraft
			s.runs[id] = run
			reverted = append(reverted, run)
		}
	}
	return reverted, nil
}

func (s *memoryStore) ListItems(ctx context.Context, runID string) ([]payroll.PayrollItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]payroll.PayrollItem, 0, len(s.items[runID]))
	for _, item := range s.items[runID] {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (s *memoryStore) GetItem(ctx context.Context, runID, employeeID string) (payroll.PayrollItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[runID][employeeID]
	if !ok {
		return payroll.PayrollItem{}, payroll.ErrItemNotFound
	}
	return item, nil
}

func (s *memoryStore) SaveAdjustedItem(ctx context.Context, item payroll.PayrollItem) (payroll.PayrollRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.runs[item.RunID]
	if run.Status != payroll.RunStatusReview {
		return payroll.PayrollRun{}, payroll.ErrRunNotInReview
	}
	if _, ok := s.items[item.RunID][item.EmployeeID]; !ok {
		return payroll.PayrollRun{}, payroll.ErrItemNotFound
	}
	s.items[item.RunID][item.EmployeeID] = item
	run = s.applyTotals(run, s.items[item.RunID])
	s.runs[run.ID] = run
	return run, nil
}

func (s *memoryStore) CommitRun(ctx context.Context, runID string, items []payroll.PayrollItem, totals payroll.RunTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return s.commitErr
	}
	run := s.runs[runID]
	if run.Status != payroll.RunStatusCalculating {
		return payroll.ErrRunStatusConflict
	}
	next := make(map[string]payroll.PayrollItem, len(items))
	for _, item := range items {
		next[item.EmployeeID] = item
	}
	s.items[runID] = next
	run.Status = payroll.RunStatusReview
	run.Headcount = totals.Headcount
	run.TotalGross = totals.TotalGross
	run.TotalDeductions = totals.TotalDeductions
	run.TotalNet = totals.TotalNet
	now := time.Now()
	run.CalculatedAt = &now
	s.runs[runID] = run
	s.commits++
	return nil
}

func (s *memoryStore) applyTotals(run payroll.PayrollRun, items map[string]payroll.PayrollItem) payroll.PayrollRun {
	var totals payroll.RunTotals
	for _, item := range items {
		totals.Add(item)
	}
	run.Headcount = totals.Headcount
	run.TotalGross = totals.TotalGross
	run.TotalDeductions = totals.TotalDeductions
	run.TotalNet = totals.TotalNet
	return run
}

func (s *memoryStore) itemCount(runID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items[runID])
}

// ---- helpers ----

func annual(v int64) func(ctx context.Context, employeeID, companyID string, asOf time.Time) (*payroll.CompensationRecord, error) {
	return func(ctx context.Context, employeeID, companyID string, asOf time.Time) (*payroll.CompensationRecord, error) {
		return &payroll.CompensationRecord{AnnualSalary: decimal.NewFromInt(v), EffectiveDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
	}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func march2025() (time.Time, time.Time) {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
}

func draftRun(id, companyID string) payroll.PayrollRun {
	start, end := march2025()
	return payroll.PayrollRun{
		ID:          id,
		CompanyID:   companyID,
		YearMonth:   "2025-03",
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      payroll.RunStatusDraft,
	}
}
