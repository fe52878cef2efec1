package severance

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinimumTenureDays is the continuous service required before severance is owed.
const MinimumTenureDays = 365

type PaySource string

const (
	// PaySourcePaid marks a month taken from a PAID payroll run.
	PaySourcePaid PaySource = "PAID"
	// PaySourceEstimated marks a month rebuilt from compensation, allowances and attendance.
	PaySourceEstimated PaySource = "ESTIMATED"
)

type MonthlyPay struct {
	YearMonth   string          `json:"year_month"`
	Source      PaySource       `json:"source"`
	BaseSalary  decimal.Decimal `json:"base_salary"`
	Allowances  decimal.Decimal `json:"allowances"`
	OvertimePay decimal.Decimal `json:"overtime_pay"`
	TotalPay    decimal.Decimal `json:"total_pay"`
}

// SeveranceDetail is a derived report. It is never persisted.
type SeveranceDetail struct {
	EmployeeID        string          `json:"employee_id"`
	EmployeeName      string          `json:"employee_name"`
	HireDate          time.Time       `json:"hire_date"`
	TerminationDate   time.Time       `json:"termination_date"`
	TenureDays        int             `json:"tenure_days"`
	TenureYears       decimal.Decimal `json:"tenure_years"`
	IsEligible        bool            `json:"is_eligible"`
	Months            []MonthlyPay    `json:"months"`
	AverageMonthlyPay decimal.Decimal `json:"average_monthly_pay"`
	SeverancePay      decimal.Decimal `json:"severance_pay"`
	IncomeTax         decimal.Decimal `json:"income_tax"`
	LocalIncomeTax    decimal.Decimal `json:"local_income_tax"`
	NetSeverancePay   decimal.Decimal `json:"net_severance_pay"`
	RateTableVersion  string          `json:"rate_table_version,omitempty"`
}
