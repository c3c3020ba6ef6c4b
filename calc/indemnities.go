/*
indemnities.go - Meal and maintenance allowances

PURPOSE:
  Sums per-entry meal allowances and tiered maintenance allowances for
  the target month. Absence entries are skipped entirely.

TIER LOOKUP:
  Two-pass search over the configured tier list:
    1. first tier with minHours <= hours < maxHours (half-open)
    2. failing that, first tier with minHours <= hours <= maxHours
       (closed upper bound, covers boundary equality in abutting tables)
  A miss is not an error: the entry contributes 0. Overlapping tiers are
  not rejected; the first match in configuration order wins.

SEE ALSO:
  - types.go: MaintenanceTier, FeeConfig extraction from the contract
*/
package calc

import "github.com/shopspring/decimal"

// FeeConfig is the indemnity portion of a contract.
type FeeConfig struct {
	MealFeeEnabled        bool
	MealFeePerMeal        decimal.Decimal
	MaintenanceFeeEnabled bool
	MaintenanceTiers      []MaintenanceTier
}

type IndemnitiesResult struct {
	MealsTotalMonth      int
	MealIndemnity        decimal.Decimal
	MaintenanceIndemnity decimal.Decimal
}

// Indemnities accumulates meal counts and fees over the given entries.
// The meals total is counted even when the meal fee is disabled.
func Indemnities(entries []TimeEntry, fees FeeConfig) IndemnitiesResult {
	result := IndemnitiesResult{
		MealIndemnity:        decimal.Zero,
		MaintenanceIndemnity: decimal.Zero,
	}

	for _, e := range entries {
		if e.Absent() {
			continue
		}
		result.MealsTotalMonth += e.MealsCount
		if fees.MealFeeEnabled {
			meals := decimal.NewFromInt(int64(e.MealsCount))
			result.MealIndemnity = result.MealIndemnity.Add(meals.Mul(fees.MealFeePerMeal))
		}
		if fees.MaintenanceFeeEnabled {
			if tier, ok := lookupTier(fees.MaintenanceTiers, e.HoursDone()); ok {
				result.MaintenanceIndemnity = result.MaintenanceIndemnity.Add(tier.Fee)
			}
		}
	}
	return result
}

// lookupTier finds the tier covering the given hours: half-open match
// first, then closed-interval fallback.
func lookupTier(tiers []MaintenanceTier, hours decimal.Decimal) (MaintenanceTier, bool) {
	for _, t := range tiers {
		if hours.GreaterThanOrEqual(t.MinHours) && hours.LessThan(t.MaxHours) {
			return t, true
		}
	}
	for _, t := range tiers {
		if hours.GreaterThanOrEqual(t.MinHours) && hours.LessThanOrEqual(t.MaxHours) {
			return t, true
		}
	}
	return MaintenanceTier{}, false
}
