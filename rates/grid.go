/*
Package rates resolves a contract's base hourly rate from the reference
grid.

PURPOSE:
  The reference grid maps (daysPerWeek, hoursPerDay) combinations to a
  base hourly rate. When a contract is created without an explicit rate,
  the grid supplies one: exact match first, otherwise the row with the
  same daysPerWeek whose hoursPerDay is closest by absolute difference.

  The engine itself never touches the grid; it receives the resolved
  effective rate as an input.

SEE ALSO:
  - api: applies the override-or-base effective rate rule
  - store/sqlite: persists the grid in the settings row
*/
package rates

import "github.com/shopspring/decimal"

// Row is one line of the reference grid.
type Row struct {
	DaysPerWeek    int
	HoursPerDay    decimal.Decimal
	BaseHourlyRate decimal.Decimal
	Note           string
}

// DefaultGrid returns the seed grid used until an admin edits it.
func DefaultGrid() []Row {
	return []Row{
		{DaysPerWeek: 2, HoursPerDay: decimal.NewFromFloat(8), BaseHourlyRate: decimal.NewFromFloat(4.8)},
		{DaysPerWeek: 3, HoursPerDay: decimal.NewFromFloat(8), BaseHourlyRate: decimal.NewFromFloat(4.5)},
		{DaysPerWeek: 4, HoursPerDay: decimal.NewFromFloat(8.5), BaseHourlyRate: decimal.NewFromFloat(4.2)},
		{DaysPerWeek: 5, HoursPerDay: decimal.NewFromFloat(8.5), BaseHourlyRate: decimal.NewFromFloat(4.0)},
		{DaysPerWeek: 5, HoursPerDay: decimal.NewFromFloat(10), BaseHourlyRate: decimal.NewFromFloat(3.9)},
	}
}

// ResolveBaseRate picks the base hourly rate for a schedule. Exact match
// on (daysPerWeek, hoursPerDay) wins; otherwise the closest hoursPerDay
// among rows with the same daysPerWeek; zero when no row matches at all.
func ResolveBaseRate(grid []Row, daysPerWeek int, hoursPerDay decimal.Decimal) decimal.Decimal {
	for _, row := range grid {
		if row.DaysPerWeek == daysPerWeek && row.HoursPerDay.Equal(hoursPerDay) {
			return row.BaseHourlyRate
		}
	}

	best := decimal.Zero
	bestDiff := decimal.Decimal{}
	found := false
	for _, row := range grid {
		if row.DaysPerWeek != daysPerWeek {
			continue
		}
		diff := row.HoursPerDay.Sub(hoursPerDay).Abs()
		if !found || diff.LessThan(bestDiff) {
			best = row.BaseHourlyRate
			bestDiff = diff
			found = true
		}
	}
	return best
}
