package payslip

import (
	"bytes"
	"fmt"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Document is everything printed on one pay stub.
type Document struct {
	Run          payroll.PayrollRun
	Item         payroll.PayrollItem
	EmployeeName string
	EmployeeCode string
}

type line struct {
	label  string
	amount decimal.Decimal
}

// Render lays out a pay stub as an A4 PDF. It prints stored figures only.
func Render(doc Document) ([]byte, error) {
	d := doc.Item.Detail
	currency := doc.Item.Currency

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", doc.Run.YearMonth, doc.EmployeeName), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", doc.EmployeeName, doc.EmployeeCode))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", doc.Run.PeriodStart.Format("2006-01-02"), doc.Run.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Rate table: %s", d.RateTableVersion))
	pdf.Ln(10)

	section(pdf, "Earnings", currency, []line{
		{"Base salary", d.Earnings.BaseSalary},
		{"Fixed overtime allowance", d.Earnings.FixedOvertimeAllowance},
		{"Meal allowance", d.Earnings.MealAllowance},
		{"Transport allowance", d.Earnings.TransportAllowance},
		{"Overtime pay", d.Earnings.OvertimePay},
		{"Night shift pay", d.Earnings.NightShiftPay},
		{"Holiday pay", d.Earnings.HolidayPay},
		{"Bonuses", d.Earnings.Bonuses},
		{"Other earnings", d.Earnings.OtherEarnings},
	}, line{"Gross pay", d.GrossPay})

	section(pdf, "Deductions", currency, []line{
		{"National pension", d.Deductions.NationalPension},
		{"Health insurance", d.Deductions.HealthInsurance},
		{"Long-term care", d.Deductions.LongTermCare},
		{"Employment insurance", d.Deductions.EmploymentInsurance},
		{"Income tax", d.Deductions.IncomeTax},
		{"Local income tax", d.Deductions.LocalIncomeTax},
		{"Other", d.Deductions.Other},
	}, line{"Total deductions", d.TotalDeductions})

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Overtime", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Hourly wage: %s %s", d.Overtime.HourlyWage.StringFixed(0), currency), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Hours - weekday %s, weekend %s, holiday %s, night %s",
		d.Overtime.WeekdayHours.StringFixed(2),
		d.Overtime.WeekendHours.StringFixed(2),
		d.Overtime.HolidayHours.StringFixed(2),
		d.Overtime.NightHours.StringFixed(2)), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 9, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 9, amount(d.NetPay, currency), "T", 1, "R", false, 0, "")

	if doc.Item.IsManuallyAdjusted && doc.Item.AdjustmentReason != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "Adjusted: "+*doc.Item.AdjustmentReason, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title, currency string, lines []line, total line) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range lines {
		if l.amount.IsZero() {
			continue
		}
		pdf.CellFormat(120, 6, l.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, amount(l.amount, currency), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(120, 7, total.label, "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, amount(total.amount, currency), "T", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func amount(v decimal.Decimal, currency string) string {
	return v.StringFixed(0) + " " + currency
}
