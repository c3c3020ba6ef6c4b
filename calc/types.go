/*
Package calc implements the payroll calculation engine for childcare
("assistante maternelle") employment contracts.

PURPOSE:
  Turns a contract's parameters plus a set of daily time entries into a
  complete monthly financial summary: smoothed expected hours, hours done,
  complementary hours, weekly overtime, gross/net pay, meal and maintenance
  indemnities, and a per-day breakdown.

KEY CONCEPTS IN THIS FILE (types.go):
  - ContractParams: Immutable inputs for one calculation call
  - TimeEntry: One day of recorded childcare, with absence/holiday tags
  - MaintenanceTier: Hours bracket -> daily maintenance fee
  - Calculator: Carries the injected rate constants (net coefficient,
    weekly overtime threshold) so tests can override them

DESIGN PRINCIPLES:
  1. Purity: No I/O, no shared state; every function is deterministic
     and safe to call concurrently.
  2. Precision: Uses decimal.Decimal to avoid floating-point drift.
     Rounding to 2 decimals happens only at the presentation boundary
     (Round2), never mid-pipeline.
  3. The engine assumes schema-valid input. Structural validation
     (tier bounds, both-or-neither clock times, value ranges) is the
     caller's job.

MENSUALISATION:
  French childcare pay is smoothed: the annual contract hours (net of
  planned absences) are billed in 12 equal monthly installments
  regardless of how many contractual days fall in each month. Only
  planned, pre-declared absences reduce the annual baseline; unplanned
  absences and holidays do not.

SEE ALSO:
  - time.go: Day/Period/clock primitives
  - hours.go: Complementary hours and weekly overtime
  - mensualisation.go: Smoothed expected hours
  - gross.go: Gross/net totals
  - indemnities.go: Meal and maintenance allowances
  - summary.go: The monthly summary orchestrator
*/
package calc

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CONTRACT PARAMETERS
// =============================================================================

type ContractType string

const (
	ContractCDI ContractType = "CDI" // permanent contract
	ContractCDD ContractType = "CDD" // fixed-term contract
)

// MaintenanceTier maps an hours bracket to a daily maintenance fee.
// The bracket is half-open [MinHours, MaxHours) on first lookup, with a
// closed-interval fallback (see indemnities.go).
type MaintenanceTier struct {
	MinHours decimal.Decimal
	MaxHours decimal.Decimal
	Fee      decimal.Decimal
}

// ContractParams is the full input of one calculation call. The caller
// resolves the effective hourly rate (override or reference grid) before
// building this.
type ContractParams struct {
	HoursPerDay  decimal.Decimal
	DaysPerWeek  int // 2..5: contractual days are Monday..the Nth weekday
	WeeksPerYear int // 1..53

	// Periods where contractual days are cancelled from the annual
	// baseline. Never clipped to a month: cancelled days are counted
	// across each entire interval.
	PlannedAbsences []Period

	EffectiveHourlyRate    decimal.Decimal
	BillComplementaryHours bool
	OvertimeRatePercent    int // 10, 15 or 25

	ContractType             ContractType
	ApplyPrecariousnessPrime bool // only meaningful for CDD

	MealFeeEnabled        bool
	MealFeePerMeal        decimal.Decimal
	MaintenanceFeeEnabled bool
	MaintenanceFeeTiers   []MaintenanceTier
}

// Fees extracts the indemnity configuration from the contract.
func (p ContractParams) Fees() FeeConfig {
	return FeeConfig{
		MealFeeEnabled:        p.MealFeeEnabled,
		MealFeePerMeal:        p.MealFeePerMeal,
		MaintenanceFeeEnabled: p.MaintenanceFeeEnabled,
		MaintenanceTiers:      p.MaintenanceFeeTiers,
	}
}

// =============================================================================
// TIME ENTRY - One recorded day
// =============================================================================

// TimeEntry is one day of recorded childcare. StartTime/EndTime are clock
// strings ("HH:MM"), both set or both empty; DurationMinutes is derived
// from them at write time (0 when no times were recorded).
type TimeEntry struct {
	Date            Day
	StartTime       string
	EndTime         string
	DurationMinutes int
	MealsCount      int

	// An entry is an absence entry when either absence tag is set; such
	// entries never contribute hours or indemnities even if a duration
	// was recorded. Holiday/unavailable are informational only.
	IsPlannedAbsence   bool
	IsUnplannedAbsence bool
	IsHoliday          bool
	IsUnavailable      bool

	Notes string
}

// Absent reports whether the entry is excluded from hour and indemnity sums.
func (e TimeEntry) Absent() bool {
	return e.IsPlannedAbsence || e.IsUnplannedAbsence
}

// HoursDone returns the recorded duration in hours.
func (e TimeEntry) HoursDone() decimal.Decimal {
	return minutesToHours(e.DurationMinutes)
}

// =============================================================================
// CALCULATOR - Injected rate constants
// =============================================================================

var (
	// DefaultNetCoefficient converts gross pay to net pay.
	DefaultNetCoefficient = decimal.NewFromFloat(0.7812)

	// DefaultOvertimeThreshold is the weekly hours above which the
	// overtime premium applies.
	DefaultOvertimeThreshold = decimal.NewFromInt(45)
)

// Calculator carries the jurisdictional constants. They are injected, not
// hidden globals, so tests and future rule variants can override them.
type Calculator struct {
	NetCoefficient    decimal.Decimal
	OvertimeThreshold decimal.Decimal
}

// NewCalculator returns a calculator with the standard French constants.
func NewCalculator() Calculator {
	return Calculator{
		NetCoefficient:    DefaultNetCoefficient,
		OvertimeThreshold: DefaultOvertimeThreshold,
	}
}

// =============================================================================
// ROUNDING
// =============================================================================

// Round2 rounds to 2 decimal places, half away from zero. Applied only at
// the presentation boundary; unrounded values stay authoritative through
// the pipeline.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
