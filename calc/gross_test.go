package calc_test

import (
	"testing"

	"github.com/assmat/paie-engine/calc"
)

func TestGrossNetTotals_CDDWithPrime(t *testing.T) {
	// GIVEN: 100h expected at 4.00/h, 5 billed complementary hours,
	//        2 overtime hours at 25%, CDD with the precariousness prime
	//        on an 1200h annual baseline
	// THEN:  base 400, complementary 20, overtime 2,
	//        prime 480/year -> 40/month, total 462
	c := calc.NewCalculator()

	result := c.GrossNetTotals(calc.GrossNetInput{
		MonthlyExpectedHours:       dec(100),
		EffectiveHourlyRate:        dec(4),
		ComplementaryHoursMonth:    dec(5),
		BillComplementaryHours:     true,
		OvertimeHoursMonth:         dec(2),
		OvertimeRatePercent:        25,
		AnnualAfterPlannedAbsences: dec(1200),
		ContractType:               calc.ContractCDD,
		ApplyPrecariousnessPrime:   true,
	})

	if !result.BrutBase.Equal(dec(400)) {
		t.Errorf("expected base 400, got %v", result.BrutBase)
	}
	if !result.BrutComplementary.Equal(dec(20)) {
		t.Errorf("expected complementary 20, got %v", result.BrutComplementary)
	}
	if !result.BrutOvertime.Equal(dec(2)) {
		t.Errorf("expected overtime 2, got %v", result.BrutOvertime)
	}
	if !result.PrimeAnnuelle.Equal(dec(480)) {
		t.Errorf("expected annual prime 480, got %v", result.PrimeAnnuelle)
	}
	if !result.PrimeMensuelle.Equal(dec(40)) {
		t.Errorf("expected monthly prime 40, got %v", result.PrimeMensuelle)
	}
	if !result.TotalBrut.Equal(dec(462)) {
		t.Errorf("expected total gross 462, got %v", result.TotalBrut)
	}
	if !decEqual(result.Net, dec(462).Mul(calc.DefaultNetCoefficient)) {
		t.Errorf("expected net 462 x 0.7812, got %v", result.Net)
	}
}

func TestGrossNetTotals_UnbilledComplementaryHours(t *testing.T) {
	// Complementary hours are tracked but not paid when billing is off.
	c := calc.NewCalculator()

	result := c.GrossNetTotals(calc.GrossNetInput{
		MonthlyExpectedHours:    dec(100),
		EffectiveHourlyRate:     dec(4),
		ComplementaryHoursMonth: dec(5),
		BillComplementaryHours:  false,
		OvertimeRatePercent:     10,
		ContractType:            calc.ContractCDI,
	})

	if !result.BrutComplementary.IsZero() {
		t.Errorf("expected 0 complementary pay, got %v", result.BrutComplementary)
	}
	if !result.TotalBrut.Equal(dec(400)) {
		t.Errorf("expected total gross 400, got %v", result.TotalBrut)
	}
}

func TestGrossNetTotals_PrimeRequiresCDDAndFlag(t *testing.T) {
	c := calc.NewCalculator()
	base := calc.GrossNetInput{
		MonthlyExpectedHours:       dec(100),
		EffectiveHourlyRate:        dec(4),
		OvertimeRatePercent:        10,
		AnnualAfterPlannedAbsences: dec(1200),
	}

	// CDI with the flag set: no prime
	in := base
	in.ContractType = calc.ContractCDI
	in.ApplyPrecariousnessPrime = true
	if result := c.GrossNetTotals(in); !result.PrimeMensuelle.IsZero() {
		t.Errorf("CDI should never earn the prime, got %v", result.PrimeMensuelle)
	}

	// CDD without the flag: no prime
	in = base
	in.ContractType = calc.ContractCDD
	in.ApplyPrecariousnessPrime = false
	if result := c.GrossNetTotals(in); !result.PrimeMensuelle.IsZero() {
		t.Errorf("CDD without the flag should not earn the prime, got %v", result.PrimeMensuelle)
	}
}

func TestGrossNetTotals_OvertimeRateApplied(t *testing.T) {
	// 10h overtime at 3.00/h with a 10% premium pays 3.00.
	c := calc.NewCalculator()

	result := c.GrossNetTotals(calc.GrossNetInput{
		EffectiveHourlyRate: dec(3),
		OvertimeHoursMonth:  dec(10),
		OvertimeRatePercent: 10,
		ContractType:        calc.ContractCDI,
	})

	if !result.BrutOvertime.Equal(dec(3)) {
		t.Errorf("expected 3.00 overtime premium, got %v", result.BrutOvertime)
	}
}

func TestGrossNetTotals_NetCoefficientInjected(t *testing.T) {
	// A calculator with a different coefficient changes only the net figure.
	c := calc.NewCalculator()
	c.NetCoefficient = dec(0.5)

	result := c.GrossNetTotals(calc.GrossNetInput{
		MonthlyExpectedHours: dec(100),
		EffectiveHourlyRate:  dec(4),
		OvertimeRatePercent:  10,
		ContractType:         calc.ContractCDI,
	})

	if !result.Net.Equal(dec(200)) {
		t.Errorf("expected net 200 with a 0.5 coefficient, got %v", result.Net)
	}
}
