package ratetable

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SocialInsuranceRates holds the employee-share contribution rates.
type SocialInsuranceRates struct {
	PensionRate      decimal.Decimal `yaml:"pension_rate" json:"pension_rate"`
	PensionCeiling   decimal.Decimal `yaml:"pension_ceiling" json:"pension_ceiling"`
	HealthRate       decimal.Decimal `yaml:"health_rate" json:"health_rate"`
	LongTermCareRate decimal.Decimal `yaml:"long_term_care_rate" json:"long_term_care_rate"` // applied to the health insurance amount
	EmploymentRate   decimal.Decimal `yaml:"employment_rate" json:"employment_rate"`
}

// DeductionBand is one tier of the earned income deduction curve:
// deduction = Base + (annualGross - Over) * Rate, for annualGross <= Upto.
// A zero Upto marks the open-ended top band.
type DeductionBand struct {
	Upto decimal.Decimal `yaml:"upto" json:"upto"`
	Base decimal.Decimal `yaml:"base" json:"base"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
	Over decimal.Decimal `yaml:"over" json:"over"`
}

// TaxBracket uses the quick-deduction form: tax = taxable * Rate - FixedDeduction
// for taxable income above Over.
type TaxBracket struct {
	Over           decimal.Decimal `yaml:"over" json:"over"`
	Rate           decimal.Decimal `yaml:"rate" json:"rate"`
	FixedDeduction decimal.Decimal `yaml:"fixed_deduction" json:"fixed_deduction"`
}

// OvertimeMultipliers are applied to the hourly wage per overtime category.
// Night is a premium on top of base pay, so it is fractional.
type OvertimeMultipliers struct {
	Weekday decimal.Decimal `yaml:"weekday" json:"weekday"`
	Weekend decimal.Decimal `yaml:"weekend" json:"weekend"`
	Holiday decimal.Decimal `yaml:"holiday" json:"holiday"`
	Night   decimal.Decimal `yaml:"night" json:"night"`
}

// RateTable is one dated version of the jurisdiction's payroll constants.
type RateTable struct {
	Version               string               `yaml:"version" json:"version"`
	EffectiveFrom         time.Time            `yaml:"effective_from" json:"effective_from"`
	StandardMonthlyHours  int                  `yaml:"standard_monthly_hours" json:"standard_monthly_hours"`
	Insurance             SocialInsuranceRates `yaml:"social_insurance" json:"social_insurance"`
	DeductionBands        []DeductionBand      `yaml:"earned_income_deduction" json:"earned_income_deduction"`
	IncomeTaxBrackets     []TaxBracket         `yaml:"income_tax_brackets" json:"income_tax_brackets"`
	LocalIncomeTaxRate    decimal.Decimal      `yaml:"local_income_tax_rate" json:"local_income_tax_rate"`
	Overtime              OvertimeMultipliers  `yaml:"overtime_multipliers" json:"overtime_multipliers"`
}

// Validate checks the structural rules the tax functions rely on.
func (t *RateTable) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("rate table: version is required")
	}
	if t.EffectiveFrom.IsZero() {
		return fmt.Errorf("rate table %s: effective_from is required", t.Version)
	}
	if t.StandardMonthlyHours <= 0 {
		return fmt.Errorf("rate table %s: standard_monthly_hours must be positive", t.Version)
	}

	rates := map[string]decimal.Decimal{
		"pension_rate":          t.Insurance.PensionRate,
		"pension_ceiling":       t.Insurance.PensionCeiling,
		"health_rate":           t.Insurance.HealthRate,
		"long_term_care_rate":   t.Insurance.LongTermCareRate,
		"employment_rate":       t.Insurance.EmploymentRate,
		"local_income_tax_rate": t.LocalIncomeTaxRate,
		"overtime.weekday":      t.Overtime.Weekday,
		"overtime.weekend":      t.Overtime.Weekend,
		"overtime.holiday":      t.Overtime.Holiday,
		"overtime.night":        t.Overtime.Night,
	}
	for name, v := range rates {
		if v.IsNegative() {
			return fmt.Errorf("rate table %s: %s must be non-negative", t.Version, name)
		}
	}

	if len(t.DeductionBands) == 0 {
		return fmt.Errorf("rate table %s: earned_income_deduction needs at least one band", t.Version)
	}
	for i, band := range t.DeductionBands {
		last := i == len(t.DeductionBands)-1
		if band.Upto.IsZero() && !last {
			return fmt.Errorf("rate table %s: only the last deduction band may be open-ended", t.Version)
		}
		if i > 0 && !band.Upto.IsZero() && band.Upto.LessThanOrEqual(t.DeductionBands[i-1].Upto) {
			return fmt.Errorf("rate table %s: deduction bands must be ascending", t.Version)
		}
	}

	if len(t.IncomeTaxBrackets) == 0 {
		return fmt.Errorf("rate table %s: income_tax_brackets needs at least one bracket", t.Version)
	}
	for i := 1; i < len(t.IncomeTaxBrackets); i++ {
		if t.IncomeTaxBrackets[i].Over.LessThanOrEqual(t.IncomeTaxBrackets[i-1].Over) {
			return fmt.Errorf("rate table %s: income tax brackets must be ascending", t.Version)
		}
	}

	return nil
}
