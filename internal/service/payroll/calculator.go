package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/ratetable"
	"github.com/shopspring/decimal"
)

// EmployeeCalculator prices one employee for one period.
type EmployeeCalculator interface {
	Calculate(ctx context.Context, employeeID string, periodStart, periodEnd time.Time, companyID string) (payroll.PayDetail, error)
}

// Calculator reads an employee's compensation, attendance, allowances and
// benefits and turns them into a PayDetail. It holds no mutable state and is
// safe for concurrent use.
type Calculator struct {
	rates        *ratetable.Registry
	compensation payroll.CompensationProvider
	attendance   payroll.AttendanceProvider
	allowances   payroll.AllowanceProvider
	benefits     payroll.BenefitProvider
	classify     WorkTypeClassifier
}

func NewCalculator(
	rates *ratetable.Registry,
	compensation payroll.CompensationProvider,
	attendance payroll.AttendanceProvider,
	allowances payroll.AllowanceProvider,
	benefits payroll.BenefitProvider,
) *Calculator {
	return &Calculator{
		rates:        rates,
		compensation: compensation,
		attendance:   attendance,
		allowances:   allowances,
		benefits:     benefits,
		classify:     DefaultClassifier,
	}
}

// WithClassifier replaces the attendance bucketing policy.
func (c *Calculator) WithClassifier(classify WorkTypeClassifier) *Calculator {
	clone := *c
	clone.classify = classify
	return &clone
}

// Calculate aborts on any provider error and never substitutes a zero record.
func (c *Calculator) Calculate(ctx context.Context, employeeID string, periodStart, periodEnd time.Time, companyID string) (payroll.PayDetail, error) {
	table, err := c.rates.For(periodEnd)
	if err != nil {
		return payroll.PayDetail{}, err
	}

	comp, err := c.compensation.LatestCompensation(ctx, employeeID, companyID, periodEnd)
	if err != nil {
		return payroll.PayDetail{}, fmt.Errorf("latest compensation: %w", err)
	}
	baseSalary := decimal.Zero
	if comp != nil {
		baseSalary = ratetable.MonthlySalary(comp.AnnualSalary)
	}
	hourlyWage := table.HourlyWage(baseSalary)

	records, err := c.attendance.AttendanceInRange(ctx, employeeID, companyID, periodStart, periodEnd)
	if err != nil {
		return payroll.PayDetail{}, fmt.Errorf("attendance in range: %w", err)
	}
	var minutes OvertimeMinutes
	for _, r := range records {
		if r.OvertimeMinutes <= 0 {
			continue
		}
		minutes.Add(c.classify(r.WorkType), int64(r.OvertimeMinutes))
	}
	overtime := PayOvertime(minutes, hourlyWage, table.Overtime)

	earnings := payroll.Earnings{
		BaseSalary:             baseSalary,
		FixedOvertimeAllowance: decimal.Zero,
		MealAllowance:          decimal.Zero,
		TransportAllowance:     decimal.Zero,
		OvertimePay:            overtime.WeekdayPay.Add(overtime.WeekendPay),
		NightShiftPay:          overtime.NightPay,
		HolidayPay:             overtime.HolidayPay,
		Bonuses:                decimal.Zero,
		OtherEarnings:          decimal.Zero,
	}

	allowances, err := c.allowances.AllowanceRecords(ctx, employeeID, companyID, payroll.YearMonth(periodStart))
	if err != nil {
		return payroll.PayDetail{}, fmt.Errorf("allowance records: %w", err)
	}
	for _, a := range allowances {
		switch a.AllowanceType {
		case payroll.AllowanceMeal:
			earnings.MealAllowance = earnings.MealAllowance.Add(a.Amount)
		case payroll.AllowanceTransport:
			earnings.TransportAllowance = earnings.TransportAllowance.Add(a.Amount)
		case payroll.AllowanceFixedOvertime:
			earnings.FixedOvertimeAllowance = earnings.FixedOvertimeAllowance.Add(a.Amount)
		default:
			earnings.OtherEarnings = earnings.OtherEarnings.Add(a.Amount)
		}
	}

	// Recurring benefits stack on top of explicit allowances of the same category.
	benefits, err := c.benefits.ActiveMonthlyBenefits(ctx, employeeID, companyID, periodStart, periodEnd)
	if err != nil {
		return payroll.PayDetail{}, fmt.Errorf("active monthly benefits: %w", err)
	}
	for _, b := range benefits {
		switch b.Category {
		case payroll.BenefitMeal:
			earnings.MealAllowance = earnings.MealAllowance.Add(b.Amount)
		case payroll.BenefitTransport:
			earnings.TransportAllowance = earnings.TransportAllowance.Add(b.Amount)
		default:
			earnings.OtherEarnings = earnings.OtherEarnings.Add(b.Amount)
		}
	}

	grossPay := earnings.Total()
	insurance := table.SocialInsurance(grossPay)
	tax := table.MonthlyIncomeTax(grossPay)

	detail := payroll.PayDetail{
		EmployeeID:       employeeID,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		RateTableVersion: table.Version,
		Earnings:         earnings,
		Deductions: payroll.Deductions{
			NationalPension:     insurance.NationalPension,
			HealthInsurance:     insurance.HealthInsurance,
			LongTermCare:        insurance.LongTermCare,
			EmploymentInsurance: insurance.EmploymentInsurance,
			IncomeTax:           tax.IncomeTax,
			LocalIncomeTax:      tax.LocalIncomeTax,
			Other:               decimal.Zero,
		},
		Overtime: overtime,
	}
	detail.Recompute()

	return detail, nil
}

// Reprice rebuilds the statutory deductions of an edited detail with the rate
// table in force at its period end. The other-deduction line is kept.
func Reprice(rates *ratetable.Registry, detail payroll.PayDetail) (payroll.PayDetail, error) {
	table, err := rates.For(detail.PeriodEnd)
	if err != nil {
		return payroll.PayDetail{}, err
	}

	grossPay := detail.Earnings.Total()
	insurance := table.SocialInsurance(grossPay)
	tax := table.MonthlyIncomeTax(grossPay)

	detail.RateTableVersion = table.Version
	detail.Deductions.NationalPension = insurance.NationalPension
	detail.Deductions.HealthInsurance = insurance.HealthInsurance
	detail.Deductions.LongTermCare = insurance.LongTermCare
	detail.Deductions.EmploymentInsurance = insurance.EmploymentInsurance
	detail.Deductions.IncomeTax = tax.IncomeTax
	detail.Deductions.LocalIncomeTax = tax.LocalIncomeTax
	detail.Recompute()

	return detail, nil
}
