package ratetable

import "github.com/shopspring/decimal"

var (
	twelve = decimal.NewFromInt(12)
	sixty  = decimal.NewFromInt(60)
)

// Contributions are the four social insurance lines, each already rounded.
type Contributions struct {
	NationalPension     decimal.Decimal `json:"national_pension"`
	HealthInsurance     decimal.Decimal `json:"health_insurance"`
	LongTermCare        decimal.Decimal `json:"long_term_care"`
	EmploymentInsurance decimal.Decimal `json:"employment_insurance"`
}

func (c Contributions) Total() decimal.Decimal {
	return c.NationalPension.Add(c.HealthInsurance).Add(c.LongTermCare).Add(c.EmploymentInsurance)
}

// IncomeTax is the monthly withholding pair.
type IncomeTax struct {
	IncomeTax      decimal.Decimal `json:"income_tax"`
	LocalIncomeTax decimal.Decimal `json:"local_income_tax"`
}

func (t IncomeTax) Total() decimal.Decimal {
	return t.IncomeTax.Add(t.LocalIncomeTax)
}

// MonthlySalary spreads an annual salary over twelve months, rounded to a whole unit.
func MonthlySalary(annualSalary decimal.Decimal) decimal.Decimal {
	if !annualSalary.IsPositive() {
		return decimal.Zero
	}
	return annualSalary.Div(twelve).Round(0)
}

// HourlyWage derives the ordinary hourly wage from a monthly salary.
func (t *RateTable) HourlyWage(monthlySalary decimal.Decimal) decimal.Decimal {
	if !monthlySalary.IsPositive() {
		return decimal.Zero
	}
	return monthlySalary.Div(decimal.NewFromInt(int64(t.StandardMonthlyHours))).Round(0)
}

// SocialInsurance computes the employee contributions on a monthly gross.
// Every line is rounded on its own, and long-term care is derived from the
// rounded health insurance amount.
func (t *RateTable) SocialInsurance(grossPay decimal.Decimal) Contributions {
	if !grossPay.IsPositive() {
		return Contributions{
			NationalPension:     decimal.Zero,
			HealthInsurance:     decimal.Zero,
			LongTermCare:        decimal.Zero,
			EmploymentInsurance: decimal.Zero,
		}
	}

	rates := t.Insurance
	pensionBase := decimal.Min(grossPay, rates.PensionCeiling)
	health := grossPay.Mul(rates.HealthRate).Round(0)

	return Contributions{
		NationalPension:     pensionBase.Mul(rates.PensionRate).Round(0),
		HealthInsurance:     health,
		LongTermCare:        health.Mul(rates.LongTermCareRate).Round(0),
		EmploymentInsurance: grossPay.Mul(rates.EmploymentRate).Round(0),
	}
}

// EarnedIncomeDeduction applies the deduction curve to an annual gross.
func (t *RateTable) EarnedIncomeDeduction(annualGross decimal.Decimal) decimal.Decimal {
	if !annualGross.IsPositive() {
		return decimal.Zero
	}
	for _, band := range t.DeductionBands {
		if band.Upto.IsZero() || annualGross.LessThanOrEqual(band.Upto) {
			return band.Base.Add(annualGross.Sub(band.Over).Mul(band.Rate))
		}
	}
	// Bands are closed at the top; fall back to the last one.
	band := t.DeductionBands[len(t.DeductionBands)-1]
	return band.Base.Add(annualGross.Sub(band.Over).Mul(band.Rate))
}

// AnnualIncomeTax applies the progressive brackets to a taxable income.
// Brackets are walked in ascending order and the last one whose lower
// bound is satisfied wins.
func (t *RateTable) AnnualIncomeTax(taxableIncome decimal.Decimal) decimal.Decimal {
	if !taxableIncome.IsPositive() {
		return decimal.Zero
	}
	tax := decimal.Zero
	for _, b := range t.IncomeTaxBrackets {
		if taxableIncome.GreaterThan(b.Over) {
			tax = taxableIncome.Mul(b.Rate).Sub(b.FixedDeduction)
		}
	}
	if tax.IsNegative() {
		return decimal.Zero
	}
	return tax
}

// MonthlyIncomeTax computes the monthly income tax and local surtax for a
// monthly gross, on an annualized basis. Both figures are floored.
func (t *RateTable) MonthlyIncomeTax(monthlyGross decimal.Decimal) IncomeTax {
	if !monthlyGross.IsPositive() {
		return IncomeTax{IncomeTax: decimal.Zero, LocalIncomeTax: decimal.Zero}
	}

	annualGross := monthlyGross.Mul(twelve)
	taxable := annualGross.Sub(t.EarnedIncomeDeduction(annualGross))
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	incomeTax := t.AnnualIncomeTax(taxable).Div(twelve).Floor()
	return IncomeTax{
		IncomeTax:      incomeTax,
		LocalIncomeTax: incomeTax.Mul(t.LocalIncomeTaxRate).Floor(),
	}
}

// MinutePay is the rounded pay for a number of minutes at hourlyWage × multiplier.
func MinutePay(hourlyWage, multiplier decimal.Decimal, minutes int64) decimal.Decimal {
	if minutes <= 0 || !hourlyWage.IsPositive() {
		return decimal.Zero
	}
	return hourlyWage.Mul(multiplier).Mul(decimal.NewFromInt(minutes)).Div(sixty).Round(0)
}
