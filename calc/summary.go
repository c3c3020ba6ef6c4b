/*
summary.go - Monthly summary orchestrator

PURPOSE:
  Composes the whole pipeline into one monthly report: expected hours,
  hours done, complementary hours, weekly overtime, gross/net totals,
  indemnities, total payable, and a row per calendar day.

PIPELINE (single pass, no persisted state):
  1. Filter entries to the target month
  2. Expected hours from the contract's FULL planned-absence list
  3. Hours done = sum of non-absence month durations
  4. Complementary hours over the month entries
  5. Weekly overtime over ALL supplied entries (the caller pads the set
     to full calendar weeks, see PaddedMonthPeriod)
  6. Gross/net totals
  7. Indemnities over the month entries only
  8. totalAPayer = totalBrut + meal + maintenance indemnities
  9. Day rows for every day of the month

  All figures stay unrounded through the pipeline; Rounded() produces
  the 2-decimal presentation block.

SEE ALSO:
  - hours.go, mensualisation.go, gross.go, indemnities.go
*/
package calc

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayRow is one calendar day of the month, present or absent.
type DayRow struct {
	Date               Day
	Entry              *TimeEntry // nil when no entry was recorded
	HoursDone          decimal.Decimal
	ComplementaryHours decimal.Decimal
}

// MonthlySummary is the complete monthly report. Computed fresh on every
// call from the current contract and entries; never cached or mutated.
type MonthlySummary struct {
	Year  int
	Month time.Month

	MonthEntries            []TimeEntry
	Expected                ExpectedHoursResult
	HoursDone               decimal.Decimal
	ComplementaryHoursMonth decimal.Decimal
	Weekly                  WeeklyOvertimeResult
	Gross                   GrossNetResult
	Indemnities             IndemnitiesResult
	TotalAPayer             decimal.Decimal
	DayRows                 []DayRow
}

// MonthlySummary runs the full pipeline for one contract and month.
// Entries should span the full calendar weeks overlapping the month so
// the weekly-overtime buckets are complete.
func (c Calculator) MonthlySummary(contract ContractParams, entries []TimeEntry, year int, month time.Month) *MonthlySummary {
	monthPeriod := MonthPeriod(year, month)
	var monthEntries []TimeEntry
	for _, e := range entries {
		if monthPeriod.Contains(e.Date) {
			monthEntries = append(monthEntries, e)
		}
	}

	expected := MonthlyExpectedHours(contract, year, month)

	hoursDone := decimal.Zero
	for _, e := range monthEntries {
		if !e.Absent() {
			hoursDone = hoursDone.Add(e.HoursDone())
		}
	}

	complementary := ComplementaryHoursForMonth(monthEntries, contract.HoursPerDay)
	weekly := c.WeeklyOvertime(entries)

	gross := c.GrossNetTotals(GrossNetInput{
		MonthlyExpectedHours:       expected.MonthlyExpectedHoursSmoothed,
		EffectiveHourlyRate:        contract.EffectiveHourlyRate,
		ComplementaryHoursMonth:    complementary,
		BillComplementaryHours:     contract.BillComplementaryHours,
		OvertimeHoursMonth:         weekly.TotalOvertimeHours,
		OvertimeRatePercent:        contract.OvertimeRatePercent,
		AnnualAfterPlannedAbsences: expected.AnnualAfterPlannedAbsences,
		ContractType:               contract.ContractType,
		ApplyPrecariousnessPrime:   contract.ApplyPrecariousnessPrime,
	})

	indemnities := Indemnities(monthEntries, contract.Fees())

	return &MonthlySummary{
		Year:                    year,
		Month:                   month,
		MonthEntries:            monthEntries,
		Expected:                expected,
		HoursDone:               hoursDone,
		ComplementaryHoursMonth: complementary,
		Weekly:                  weekly,
		Gross:                   gross,
		Indemnities:             indemnities,
		TotalAPayer:             gross.TotalBrut.Add(indemnities.MealIndemnity).Add(indemnities.MaintenanceIndemnity),
		DayRows:                 buildDayRows(monthEntries, monthPeriod, contract.HoursPerDay),
	}
}

// buildDayRows produces one row per calendar day of the month, attaching
// the matching entry when one exists.
func buildDayRows(monthEntries []TimeEntry, monthPeriod Period, hoursPerDay decimal.Decimal) []DayRow {
	byDate := make(map[Day]*TimeEntry, len(monthEntries))
	for i := range monthEntries {
		byDate[monthEntries[i].Date] = &monthEntries[i]
	}

	days := monthPeriod.Days()
	rows := make([]DayRow, 0, len(days))
	for _, day := range days {
		row := DayRow{Date: day, HoursDone: decimal.Zero, ComplementaryHours: decimal.Zero}
		if e := byDate[day]; e != nil {
			row.Entry = e
			row.HoursDone = e.HoursDone()
			if !e.Absent() {
				if extra := row.HoursDone.Sub(hoursPerDay); extra.IsPositive() {
					row.ComplementaryHours = extra
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// =============================================================================
// PRESENTATION ROUNDING
// =============================================================================

// RoundedSummary is the 2-decimal presentation block of a summary.
type RoundedSummary struct {
	ExpectedMonthlyHours    decimal.Decimal
	HoursDone               decimal.Decimal
	ComplementaryHoursMonth decimal.Decimal
	OvertimeHoursMonth      decimal.Decimal
	BrutBase                decimal.Decimal
	BrutComplementary       decimal.Decimal
	BrutOvertime            decimal.Decimal
	PrimeMensuelle          decimal.Decimal
	TotalBrut               decimal.Decimal
	Net                     decimal.Decimal
	MealIndemnity           decimal.Decimal
	MaintenanceIndemnity    decimal.Decimal
	TotalAPayer             decimal.Decimal
}

// Rounded returns the presentation figures, each rounded to 2 decimals.
func (s *MonthlySummary) Rounded() RoundedSummary {
	return RoundedSummary{
		ExpectedMonthlyHours:    Round2(s.Expected.MonthlyExpectedHoursSmoothed),
		HoursDone:               Round2(s.HoursDone),
		ComplementaryHoursMonth: Round2(s.ComplementaryHoursMonth),
		OvertimeHoursMonth:      Round2(s.Weekly.TotalOvertimeHours),
		BrutBase:                Round2(s.Gross.BrutBase),
		BrutComplementary:       Round2(s.Gross.BrutComplementary),
		BrutOvertime:            Round2(s.Gross.BrutOvertime),
		PrimeMensuelle:          Round2(s.Gross.PrimeMensuelle),
		TotalBrut:               Round2(s.Gross.TotalBrut),
		Net:                     Round2(s.Gross.Net),
		MealIndemnity:           Round2(s.Indemnities.MealIndemnity),
		MaintenanceIndemnity:    Round2(s.Indemnities.MaintenanceIndemnity),
		TotalAPayer:             Round2(s.TotalAPayer),
	}
}
