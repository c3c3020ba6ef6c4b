/*
gross.go - Gross and net pay totals

PURPOSE:
  Combines base pay, complementary-hour pay, the weekly-overtime premium
  and the CDD precariousness prime into gross pay, then applies the net
  conversion coefficient.

NOTE ON OVERTIME INPUT:
  OvertimeHoursMonth is the weekly-overtime total across the full set of
  entries supplied to the orchestrator (full calendar weeks), not an
  amount recomputed within strict month boundaries.

SEE ALSO:
  - hours.go: Produces the complementary and overtime inputs
  - mensualisation.go: Produces the expected-hours inputs
*/
package calc

import "github.com/shopspring/decimal"

var (
	hundred   = decimal.NewFromInt(100)
	primeRate = decimal.NewFromFloat(0.10) // precariousness prime: 10% of adjusted annual pay
)

// GrossNetInput carries everything the totals calculation needs.
type GrossNetInput struct {
	MonthlyExpectedHours    decimal.Decimal
	EffectiveHourlyRate     decimal.Decimal
	ComplementaryHoursMonth decimal.Decimal
	BillComplementaryHours  bool
	OvertimeHoursMonth      decimal.Decimal
	OvertimeRatePercent     int

	AnnualAfterPlannedAbsences decimal.Decimal
	ContractType               ContractType
	ApplyPrecariousnessPrime   bool
}

type GrossNetResult struct {
	BrutBase          decimal.Decimal
	BrutComplementary decimal.Decimal
	BrutOvertime      decimal.Decimal
	PrimeAnnuelle     decimal.Decimal
	PrimeMensuelle    decimal.Decimal
	TotalBrut         decimal.Decimal
	Net               decimal.Decimal
}

// GrossNetTotals computes the monthly gross breakdown and the net figure.
func (c Calculator) GrossNetTotals(in GrossNetInput) GrossNetResult {
	brutBase := in.MonthlyExpectedHours.Mul(in.EffectiveHourlyRate)

	brutComplementary := decimal.Zero
	if in.BillComplementaryHours {
		brutComplementary = in.ComplementaryHoursMonth.Mul(in.EffectiveHourlyRate)
	}

	overtimeRate := decimal.NewFromInt(int64(in.OvertimeRatePercent)).Div(hundred)
	brutOvertime := in.OvertimeHoursMonth.Mul(in.EffectiveHourlyRate).Mul(overtimeRate)

	primeAnnuelle := decimal.Zero
	if in.ContractType == ContractCDD && in.ApplyPrecariousnessPrime {
		primeAnnuelle = primeRate.Mul(in.AnnualAfterPlannedAbsences.Mul(in.EffectiveHourlyRate))
	}
	primeMensuelle := primeAnnuelle.Div(twelve)

	totalBrut := brutBase.Add(brutComplementary).Add(brutOvertime).Add(primeMensuelle)

	return GrossNetResult{
		BrutBase:          brutBase,
		BrutComplementary: brutComplementary,
		BrutOvertime:      brutOvertime,
		PrimeAnnuelle:     primeAnnuelle,
		PrimeMensuelle:    primeMensuelle,
		TotalBrut:         totalBrut,
		Net:               totalBrut.Mul(c.NetCoefficient),
	}
}
