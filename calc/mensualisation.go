/*
mensualisation.go - Smoothed monthly expected hours

PURPOSE:
  Converts the annual contract (hoursPerDay x daysPerWeek x weeksPerYear)
  into the smoothed monthly baseline, net of planned-absence cancellations.

SMOOTHING RULE:
  Every month bills annualAfterPlannedAbsences / 12, regardless of how
  many contractual days actually fall in that calendar month. Cancelled
  days are counted across each ENTIRE planned-absence interval, never
  clipped to the target month.

  cancelledDaysInMonth is informational only (shown on the summary); it
  does not adjust the smoothed figure.

SEE ALSO:
  - time.go: IsContractualWeekday, Period.Days
  - gross.go: Consumes the smoothed figure and the annual baseline
*/
package calc

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpectedHoursResult is the output of the annual-to-monthly conversion.
type ExpectedHoursResult struct {
	WeeklyHours                  decimal.Decimal
	AnnualContractHours          decimal.Decimal
	AnnualAfterPlannedAbsences   decimal.Decimal
	MonthlyExpectedHoursSmoothed decimal.Decimal

	// Contractual days cancelled across all planned-absence intervals.
	CancelledDaysTotal int

	// Contractual days of the target month falling in a planned absence.
	// Informational; not used in the smoothed figure.
	CancelledDaysInMonth int
}

var twelve = decimal.NewFromInt(12)

// MonthlyExpectedHours computes the smoothed monthly baseline for the
// given contract and target month.
func MonthlyExpectedHours(params ContractParams, year int, month time.Month) ExpectedHoursResult {
	weeklyHours := params.HoursPerDay.Mul(decimal.NewFromInt(int64(params.DaysPerWeek)))
	annualContractHours := weeklyHours.Mul(decimal.NewFromInt(int64(params.WeeksPerYear)))

	cancelledTotal := 0
	for _, absence := range params.PlannedAbsences {
		for _, day := range absence.Days() {
			if IsContractualWeekday(day, params.DaysPerWeek) {
				cancelledTotal++
			}
		}
	}

	annualAfter := annualContractHours.Sub(params.HoursPerDay.Mul(decimal.NewFromInt(int64(cancelledTotal))))

	cancelledInMonth := 0
	for _, day := range MonthPeriod(year, month).Days() {
		if !IsContractualWeekday(day, params.DaysPerWeek) {
			continue
		}
		for _, absence := range params.PlannedAbsences {
			if absence.Contains(day) {
				cancelledInMonth++
				break
			}
		}
	}

	return ExpectedHoursResult{
		WeeklyHours:                  weeklyHours,
		AnnualContractHours:          annualContractHours,
		AnnualAfterPlannedAbsences:   annualAfter,
		MonthlyExpectedHoursSmoothed: annualAfter.Div(twelve),
		CancelledDaysTotal:           cancelledTotal,
		CancelledDaysInMonth:         cancelledInMonth,
	}
}
