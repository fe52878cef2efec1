package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RunStatus string

const (
	RunStatusDraft       RunStatus = "DRAFT"
	RunStatusCalculating RunStatus = "CALCULATING"
	RunStatusReview      RunStatus = "REVIEW"
	RunStatusPaid        RunStatus = "PAID"
)

func (s RunStatus) Valid() bool {
	switch s {
	case RunStatusDraft, RunStatusCalculating, RunStatusReview, RunStatusPaid:
		return true
	}
	return false
}

// PayrollRun is one calculation cycle for a company over a calendar month.
// Totals and headcount are only ever written from the run's items.
type PayrollRun struct {
	ID              string
	CompanyID       string
	YearMonth       string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Status          RunStatus
	Headcount       int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	CalculatedAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PayrollItem is one employee's result within a run, keyed by (RunID, EmployeeID).
type PayrollItem struct {
	RunID              string
	EmployeeID         string
	BaseSalary         decimal.Decimal
	OvertimePay        decimal.Decimal
	Bonus              decimal.Decimal
	Allowances         decimal.Decimal
	GrossPay           decimal.Decimal
	Deductions         decimal.Decimal
	NetPay             decimal.Decimal
	Currency           string
	Detail             PayDetail
	IsManuallyAdjusted bool
	AdjustmentReason   *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined
	EmployeeName *string
}

// NewPayrollItem flattens a computed detail into the summary columns of an item.
func NewPayrollItem(runID, currency string, detail PayDetail) PayrollItem {
	return PayrollItem{
		RunID:       runID,
		EmployeeID:  detail.EmployeeID,
		BaseSalary:  detail.Earnings.BaseSalary,
		OvertimePay: detail.Earnings.OvertimeTotal(),
		Bonus:       detail.Earnings.Bonuses,
		Allowances:  detail.Earnings.Allowances(),
		GrossPay:    detail.GrossPay,
		Deductions:  detail.TotalDeductions,
		NetPay:      detail.NetPay,
		Currency:    currency,
		Detail:      detail,
	}
}

type Earnings struct {
	BaseSalary             decimal.Decimal `json:"base_salary"`
	FixedOvertimeAllowance decimal.Decimal `json:"fixed_overtime_allowance"`
	MealAllowance          decimal.Decimal `json:"meal_allowance"`
	TransportAllowance     decimal.Decimal `json:"transport_allowance"`
	OvertimePay            decimal.Decimal `json:"overtime_pay"`
	NightShiftPay          decimal.Decimal `json:"night_shift_pay"`
	HolidayPay             decimal.Decimal `json:"holiday_pay"`
	Bonuses                decimal.Decimal `json:"bonuses"`
	OtherEarnings          decimal.Decimal `json:"other_earnings"`
}

// OvertimeTotal is computed overtime plus the night and holiday premiums.
func (e Earnings) OvertimeTotal() decimal.Decimal {
	return e.OvertimePay.Add(e.NightShiftPay).Add(e.HolidayPay)
}

func (e Earnings) Allowances() decimal.Decimal {
	return e.FixedOvertimeAllowance.Add(e.MealAllowance).Add(e.TransportAllowance).Add(e.OtherEarnings)
}

func (e Earnings) Total() decimal.Decimal {
	return e.BaseSalary.Add(e.OvertimeTotal()).Add(e.Allowances()).Add(e.Bonuses)
}

type Deductions struct {
	NationalPension     decimal.Decimal `json:"national_pension"`
	HealthInsurance     decimal.Decimal `json:"health_insurance"`
	LongTermCare        decimal.Decimal `json:"long_term_care"`
	EmploymentInsurance decimal.Decimal `json:"employment_insurance"`
	IncomeTax           decimal.Decimal `json:"income_tax"`
	LocalIncomeTax      decimal.Decimal `json:"local_income_tax"`
	Other               decimal.Decimal `json:"other"`
}

func (d Deductions) Total() decimal.Decimal {
	return d.NationalPension.
		Add(d.HealthInsurance).
		Add(d.LongTermCare).
		Add(d.EmploymentInsurance).
		Add(d.IncomeTax).
		Add(d.LocalIncomeTax).
		Add(d.Other)
}

// OvertimeBreakdown reports hours rounded to two places; pay figures are
// computed from raw minutes.
type OvertimeBreakdown struct {
	HourlyWage   decimal.Decimal `json:"hourly_wage"`
	WeekdayHours decimal.Decimal `json:"weekday_hours"`
	WeekendHours decimal.Decimal `json:"weekend_hours"`
	HolidayHours decimal.Decimal `json:"holiday_hours"`
	NightHours   decimal.Decimal `json:"night_hours"`
	WeekdayPay   decimal.Decimal `json:"weekday_pay"`
	WeekendPay   decimal.Decimal `json:"weekend_pay"`
	HolidayPay   decimal.Decimal `json:"holiday_pay"`
	NightPay     decimal.Decimal `json:"night_pay"`
}

func (o OvertimeBreakdown) TotalPay() decimal.Decimal {
	return o.WeekdayPay.Add(o.WeekendPay).Add(o.HolidayPay).Add(o.NightPay)
}

// PayDetail is the persisted, self-describing breakdown of one employee's pay.
type PayDetail struct {
	EmployeeID       string            `json:"employee_id"`
	PeriodStart      time.Time         `json:"period_start"`
	PeriodEnd        time.Time         `json:"period_end"`
	RateTableVersion string            `json:"rate_table_version"`
	Earnings         Earnings          `json:"earnings"`
	Deductions       Deductions        `json:"deductions"`
	Overtime         OvertimeBreakdown `json:"overtime"`
	GrossPay         decimal.Decimal   `json:"gross_pay"`
	TotalDeductions  decimal.Decimal   `json:"total_deductions"`
	NetPay           decimal.Decimal   `json:"net_pay"`
}

// Recompute derives gross, total deductions and net from the line items.
func (d *PayDetail) Recompute() {
	d.GrossPay = d.Earnings.Total()
	d.TotalDeductions = d.Deductions.Total()
	d.NetPay = d.GrossPay.Sub(d.TotalDeductions)
}

// RunTotals is a commutative reduction over a run's items.
type RunTotals struct {
	Headcount       int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
}

func (t *RunTotals) Add(item PayrollItem) {
	t.Headcount++
	t.TotalGross = t.TotalGross.Add(item.GrossPay)
	t.TotalDeductions = t.TotalDeductions.Add(item.Deductions)
	t.TotalNet = t.TotalNet.Add(item.NetPay)
}

// Employee is the read model the engine needs from the employee directory.
type Employee struct {
	ID               string
	CompanyID        string
	FullName         string
	EmployeeCode     string
	HireDate         time.Time
	EmploymentStatus string
}

type WorkType string

const (
	WorkTypeOvertime WorkType = "OVERTIME"
	WorkTypeHoliday  WorkType = "HOLIDAY"
	WorkTypeNight    WorkType = "NIGHT"
)

type CompensationRecord struct {
	AnnualSalary  decimal.Decimal
	EffectiveDate time.Time
}

type AttendanceRecord struct {
	Date            time.Time
	OvertimeMinutes int
	WorkType        WorkType
}

type AllowanceType string

const (
	AllowanceMeal          AllowanceType = "MEAL"
	AllowanceTransport     AllowanceType = "TRANSPORT"
	AllowanceFixedOvertime AllowanceType = "FIXED_OVERTIME"
	AllowanceOther         AllowanceType = "OTHER"
)

type AllowanceRecord struct {
	AllowanceType AllowanceType
	Amount        decimal.Decimal
}

type BenefitCategory string

const (
	BenefitMeal      BenefitCategory = "MEAL"
	BenefitTransport BenefitCategory = "TRANSPORT"
)

type BenefitAmount struct {
	Category BenefitCategory
	Amount   decimal.Decimal
}

// MonthPeriod parses a YYYY-MM label into the first and last day of that month (UTC).
func MonthPeriod(yearMonth string) (start, end time.Time, err error) {
	t, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, yearMonth)
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end, nil
}

// YearMonth formats a date as the YYYY-MM label of its month.
func YearMonth(t time.Time) string {
	return t.Format("2006-01")
}
