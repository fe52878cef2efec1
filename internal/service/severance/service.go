package severance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/severance"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/ratetable"
	"github.com/shopspring/decimal"
)

const averagingMonths = 3

var (
	daysPerYear = decimal.NewFromInt(365)
	monthsInAvg = decimal.NewFromInt(averagingMonths)
)

type SeveranceServiceImpl struct {
	rates        *ratetable.Registry
	employees    payroll.EmployeeProvider
	paid         payroll.PaidPayrollProvider
	compensation payroll.CompensationProvider
	attendance   payroll.AttendanceProvider
	allowances   payroll.AllowanceProvider
}

func NewSeveranceService(
	rates *ratetable.Registry,
	employees payroll.EmployeeProvider,
	paid payroll.PaidPayrollProvider,
	compensation payroll.CompensationProvider,
	attendance payroll.AttendanceProvider,
	allowances payroll.AllowanceProvider,
) severance.SeveranceService {
	return &SeveranceServiceImpl{
		rates:        rates,
		employees:    employees,
		paid:         paid,
		compensation: compensation,
		attendance:   attendance,
		allowances:   allowances,
	}
}

func (s *SeveranceServiceImpl) CalculateSeverance(ctx context.Context, companyID string, req severance.CalculateSeveranceRequest) (severance.SeveranceDetail, error) {
	if err := req.Validate(); err != nil {
		return severance.SeveranceDetail{}, err
	}

	emp, err := s.employees.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, payroll.ErrEmployeeNotFound) {
			return severance.SeveranceDetail{}, severance.ErrEmployeeNotFound
		}
		return severance.SeveranceDetail{}, err
	}
	if emp.CompanyID != companyID {
		return severance.SeveranceDetail{}, severance.ErrEmployeeNotFound
	}

	detail, err := s.Calculate(ctx, emp, req.Date())
	if err != nil {
		return severance.SeveranceDetail{}, err
	}

	slog.Info("Severance calculated",
		"employee_id", emp.ID,
		"company_id", companyID,
		"tenure_days", detail.TenureDays,
		"eligible", detail.IsEligible,
		"severance_pay", detail.SeverancePay.String())
	return detail, nil
}

// Calculate computes severance for an employee leaving on terminationDate.
// It depends only on its arguments and what the providers return.
func (s *SeveranceServiceImpl) Calculate(ctx context.Context, emp payroll.Employee, terminationDate time.Time) (severance.SeveranceDetail, error) {
	hire := dateOnly(emp.HireDate)
	termination := dateOnly(terminationDate)
	if termination.Before(hire) {
		return severance.SeveranceDetail{}, severance.ErrTerminationBeforeHire
	}

	tenureDays := int(termination.Sub(hire).Hours() / 24)
	detail := severance.SeveranceDetail{
		EmployeeID:        emp.ID,
		EmployeeName:      emp.FullName,
		HireDate:          hire,
		TerminationDate:   termination,
		TenureDays:        tenureDays,
		TenureYears:       decimal.NewFromInt(int64(tenureDays)).Div(daysPerYear).Round(2),
		IsEligible:        tenureDays >= severance.MinimumTenureDays,
		Months:            []severance.MonthlyPay{},
		AverageMonthlyPay: decimal.Zero,
		SeverancePay:      decimal.Zero,
		IncomeTax:         decimal.Zero,
		LocalIncomeTax:    decimal.Zero,
		NetSeverancePay:   decimal.Zero,
	}
	if !detail.IsEligible {
		return detail, nil
	}

	total := decimal.Zero
	for i := 1; i <= averagingMonths; i++ {
		monthStart := time.Date(termination.Year(), termination.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		month, err := s.monthlyPay(ctx, emp, monthStart)
		if err != nil {
			return severance.SeveranceDetail{}, fmt.Errorf("pay for %s: %w", payroll.YearMonth(monthStart), err)
		}
		detail.Months = append(detail.Months, month)
		total = total.Add(month.TotalPay)
	}

	table, err := s.rates.For(termination)
	if err != nil {
		return severance.SeveranceDetail{}, err
	}

	detail.AverageMonthlyPay = total.Div(monthsInAvg).Round(0)
	detail.SeverancePay = detail.AverageMonthlyPay.
		Mul(decimal.NewFromInt(int64(tenureDays))).
		Div(daysPerYear).
		Round(0)

	// Ordinary monthly withholding applied to the lump sum.
	tax := table.MonthlyIncomeTax(detail.SeverancePay)
	detail.IncomeTax = tax.IncomeTax
	detail.LocalIncomeTax = tax.LocalIncomeTax
	detail.NetSeverancePay = detail.SeverancePay.Sub(tax.Total())
	detail.RateTableVersion = table.Version

	return detail, nil
}

// monthlyPay prefers the PAID payroll item for the month and otherwise
// rebuilds the month from compensation, allowances and attendance.
func (s *SeveranceServiceImpl) monthlyPay(ctx context.Context, emp payroll.Employee, monthStart time.Time) (severance.MonthlyPay, error) {
	yearMonth := payroll.YearMonth(monthStart)
	monthEnd := monthStart.AddDate(0, 1, -1)

	item, err := s.paid.PaidItemForMonth(ctx, emp.ID, emp.CompanyID, yearMonth)
	if err != nil {
		return severance.MonthlyPay{}, fmt.Errorf("paid payroll item: %w", err)
	}
	if item != nil {
		return severance.MonthlyPay{
			YearMonth:   yearMonth,
			Source:      severance.PaySourcePaid,
			BaseSalary:  item.BaseSalary,
			Allowances:  item.Allowances,
			OvertimePay: item.OvertimePay,
			TotalPay:    item.GrossPay,
		}, nil
	}

	table, err := s.rates.For(monthEnd)
	if err != nil {
		return severance.MonthlyPay{}, err
	}

	comp, err := s.compensation.LatestCompensation(ctx, emp.ID, emp.CompanyID, monthEnd)
	if err != nil {
		return severance.MonthlyPay{}, fmt.Errorf("latest compensation: %w", err)
	}
	baseSalary := decimal.Zero
	if comp != nil {
		baseSalary = ratetable.MonthlySalary(comp.AnnualSalary)
	}

	records, err := s.allowances.AllowanceRecords(ctx, emp.ID, emp.CompanyID, yearMonth)
	if err != nil {
		return severance.MonthlyPay{}, fmt.Errorf("allowance records: %w", err)
	}
	allowances := decimal.Zero
	for _, a := range records {
		allowances = allowances.Add(a.Amount)
	}

	attendance, err := s.attendance.AttendanceInRange(ctx, emp.ID, emp.CompanyID, monthStart, monthEnd)
	if err != nil {
		return severance.MonthlyPay{}, fmt.Errorf("attendance in range: %w", err)
	}
	var minutes int64
	for _, a := range attendance {
		if a.OvertimeMinutes > 0 {
			minutes += int64(a.OvertimeMinutes)
		}
	}
	// Estimated months price every overtime minute at the weekday rate.
	overtime := ratetable.MinutePay(table.HourlyWage(baseSalary), table.Overtime.Weekday, minutes)

	return severance.MonthlyPay{
		YearMonth:   yearMonth,
		Source:      severance.PaySourceEstimated,
		BaseSalary:  baseSalary,
		Allowances:  allowances,
		OvertimePay: overtime,
		TotalPay:    baseSalary.Add(allowances).Add(overtime),
	}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
