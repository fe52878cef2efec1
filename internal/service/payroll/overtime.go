package payroll

import (
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/domain/payroll"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/ratetable"
	"github.com/shopspring/decimal"
)

type OvertimeCategory int

const (
	OvertimeWeekday OvertimeCategory = iota
	OvertimeWeekend
	OvertimeHoliday
	OvertimeNight
)

// OvertimeMinutes holds minutes worked per mutually exclusive category.
type OvertimeMinutes struct {
	Weekday int64
	Weekend int64
	Holiday int64
	Night   int64
}

func (m *OvertimeMinutes) Add(category OvertimeCategory, minutes int64) {
	switch category {
	case OvertimeWeekend:
		m.Weekend += minutes
	case OvertimeHoliday:
		m.Holiday += minutes
	case OvertimeNight:
		m.Night += minutes
	default:
		m.Weekday += minutes
	}
}

// WorkTypeClassifier maps an attendance work-type tag to an overtime bucket.
type WorkTypeClassifier func(workType payroll.WorkType) OvertimeCategory

// DefaultClassifier sends HOLIDAY and NIGHT to their buckets and everything
// else to weekday overtime. It never produces OvertimeWeekend.
func DefaultClassifier(workType payroll.WorkType) OvertimeCategory {
	switch workType {
	case payroll.WorkTypeHoliday:
		return OvertimeHoliday
	case payroll.WorkTypeNight:
		return OvertimeNight
	default:
		return OvertimeWeekday
	}
}

// PayOvertime prices each bucket independently. Pay uses raw minutes; the
// reported hours are rounded to two places for display only.
func PayOvertime(minutes OvertimeMinutes, hourlyWage decimal.Decimal, multipliers ratetable.OvertimeMultipliers) payroll.OvertimeBreakdown {
	return payroll.OvertimeBreakdown{
		HourlyWage:   hourlyWage,
		WeekdayHours: minutesToHours(minutes.Weekday),
		WeekendHours: minutesToHours(minutes.Weekend),
		HolidayHours: minutesToHours(minutes.Holiday),
		NightHours:   minutesToHours(minutes.Night),
		WeekdayPay:   ratetable.MinutePay(hourlyWage, multipliers.Weekday, minutes.Weekday),
		WeekendPay:   ratetable.MinutePay(hourlyWage, multipliers.Weekend, minutes.Weekend),
		HolidayPay:   ratetable.MinutePay(hourlyWage, multipliers.Holiday, minutes.Holiday),
		NightPay:     ratetable.MinutePay(hourlyWage, multipliers.Night, minutes.Night),
	}
}

func minutesToHours(minutes int64) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60)).Round(2)
}
