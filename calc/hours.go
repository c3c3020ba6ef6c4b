/*
hours.go - Daily and weekly hour aggregation

PURPOSE:
  Computes the two pay supplements derived from recorded hours:
  - Complementary hours: hours above the daily contractual quota,
    summed per entry across a month.
  - Weekly overtime: hours above the weekly threshold (45h), bucketed
    by Monday-keyed calendar weeks.

PRECONDITION (weekly overtime):
  Weeks run Monday-Sunday and may straddle month boundaries. The caller
  must supply entries covering the FULL calendar weeks overlapping the
  target month (see PaddedMonthPeriod) so a straddling week is neither
  truncated nor double-counted. The aggregator itself buckets whatever
  it is given.

SEE ALSO:
  - summary.go: Feeds both aggregates into the gross totals
*/
package calc

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPLEMENTARY HOURS - Above the daily quota
// =============================================================================

// ComplementaryHoursForMonth sums max(0, hoursWorked - hoursPerDay) over
// the given entries. Absence entries contribute nothing regardless of any
// recorded duration; entries without hours contribute 0.
func ComplementaryHoursForMonth(entries []TimeEntry, hoursPerDay decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		if e.Absent() {
			continue
		}
		if extra := e.HoursDone().Sub(hoursPerDay); extra.IsPositive() {
			sum = sum.Add(extra)
		}
	}
	return sum
}

// =============================================================================
// WEEKLY OVERTIME - Above the weekly threshold
// =============================================================================

// WeekOvertime is one calendar week's worked and overtime hours.
type WeekOvertime struct {
	WeekStart     Day // the Monday starting the week
	HoursDone     decimal.Decimal
	OvertimeHours decimal.Decimal
}

type WeeklyOvertimeResult struct {
	PerWeek            []WeekOvertime // sorted by week start ascending
	TotalOvertimeHours decimal.Decimal
}

// WeeklyOvertime groups entries by the Monday starting their calendar
// week, sums worked hours per week (excluding absences), and returns the
// per-week detail plus the grand overtime total. A week appears in the
// detail whenever any entry falls in it, even with zero overtime.
func (c Calculator) WeeklyOvertime(entries []TimeEntry) WeeklyOvertimeResult {
	byWeek := make(map[Day]decimal.Decimal)
	for _, e := range entries {
		if e.Absent() {
			continue
		}
		week := e.Date.WeekStart()
		byWeek[week] = byWeek[week].Add(e.HoursDone())
	}

	weeks := make([]Day, 0, len(byWeek))
	for week := range byWeek {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	result := WeeklyOvertimeResult{
		PerWeek:            make([]WeekOvertime, 0, len(weeks)),
		TotalOvertimeHours: decimal.Zero,
	}
	for _, week := range weeks {
		hoursDone := byWeek[week]
		overtime := hoursDone.Sub(c.OvertimeThreshold)
		if overtime.IsNegative() {
			overtime = decimal.Zero
		}
		result.PerWeek = append(result.PerWeek, WeekOvertime{
			WeekStart:     week,
			HoursDone:     hoursDone,
			OvertimeHours: overtime,
		})
		result.TotalOvertimeHours = result.TotalOvertimeHours.Add(overtime)
	}
	return result
}
