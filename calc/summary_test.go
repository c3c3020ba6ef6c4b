package calc_test

import (
	"testing"
	"time"

	"github.com/assmat/paie-engine/calc"
)

// fullContract is a CDI with complementary billing, 10% overtime and both
// indemnities enabled.
func fullContract() calc.ContractParams {
	return calc.ContractParams{
		HoursPerDay:            dec(8),
		DaysPerWeek:            5,
		WeeksPerYear:           46,
		EffectiveHourlyRate:    dec(4),
		BillComplementaryHours: true,
		OvertimeRatePercent:    10,
		ContractType:           calc.ContractCDI,
		MealFeeEnabled:         true,
		MealFeePerMeal:         dec(3),
		MaintenanceFeeEnabled:  true,
		MaintenanceFeeTiers: []calc.MaintenanceTier{
			{MinHours: dec(0), MaxHours: dec(9.01), Fee: dec(4)},
		},
	}
}

func TestMonthlySummary_FullMonth(t *testing.T) {
	// GIVEN: Mon-Fri 2025-06-02..06 at 9h with 1 meal each, plus 4h on
	//        Saturday. One calendar week totalling 49h.
	// THEN:  49h done, 5 complementary hours, 4h weekly overtime,
	//        gross 1840/12*4 + 20 + 1.60, meals 15, maintenance 24
	c := calc.NewCalculator()
	monday := day(2025, time.June, 2)

	var entries []calc.TimeEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, mealEntry(monday.AddDays(i), 540, 1))
	}
	entries = append(entries, entry(monday.AddDays(5), 240))

	s := c.MonthlySummary(fullContract(), entries, 2025, time.June)

	if !s.HoursDone.Equal(dec(49)) {
		t.Errorf("expected 49 hours done, got %v", s.HoursDone)
	}
	if !s.ComplementaryHoursMonth.Equal(dec(5)) {
		t.Errorf("expected 5 complementary hours, got %v", s.ComplementaryHoursMonth)
	}
	if !s.Weekly.TotalOvertimeHours.Equal(dec(4)) {
		t.Errorf("expected 4 overtime hours, got %v", s.Weekly.TotalOvertimeHours)
	}
	if s.Indemnities.MealsTotalMonth != 5 {
		t.Errorf("expected 5 meals, got %d", s.Indemnities.MealsTotalMonth)
	}
	if !s.Indemnities.MealIndemnity.Equal(dec(15)) {
		t.Errorf("expected meal indemnity 15, got %v", s.Indemnities.MealIndemnity)
	}
	if !s.Indemnities.MaintenanceIndemnity.Equal(dec(24)) {
		t.Errorf("expected maintenance indemnity 24, got %v", s.Indemnities.MaintenanceIndemnity)
	}

	rounded := s.Rounded()
	if !rounded.ExpectedMonthlyHours.Equal(dec(153.33)) {
		t.Errorf("expected 153.33 smoothed hours, got %v", rounded.ExpectedMonthlyHours)
	}
	if !rounded.BrutBase.Equal(dec(613.33)) {
		t.Errorf("expected base 613.33, got %v", rounded.BrutBase)
	}
	if !rounded.BrutComplementary.Equal(dec(20)) {
		t.Errorf("expected complementary 20, got %v", rounded.BrutComplementary)
	}
	if !rounded.BrutOvertime.Equal(dec(1.6)) {
		t.Errorf("expected overtime pay 1.60, got %v", rounded.BrutOvertime)
	}
	if !rounded.TotalBrut.Equal(dec(634.93)) {
		t.Errorf("expected total gross 634.93, got %v", rounded.TotalBrut)
	}
	if !rounded.Net.Equal(dec(496.01)) {
		t.Errorf("expected net 496.01, got %v", rounded.Net)
	}
	if !rounded.TotalAPayer.Equal(dec(673.93)) {
		t.Errorf("expected total payable 673.93, got %v", rounded.TotalAPayer)
	}

	// Unrounded total payable stays authoritative.
	expectedTotal := s.Gross.TotalBrut.Add(dec(39))
	if !decEqual(s.TotalAPayer, expectedTotal) {
		t.Errorf("expected total payable gross+39, got %v", s.TotalAPayer)
	}
}

func TestMonthlySummary_DayRows(t *testing.T) {
	c := calc.NewCalculator()
	entries := []calc.TimeEntry{
		mealEntry(day(2025, time.June, 2), 540, 1),
	}

	s := c.MonthlySummary(fullContract(), entries, 2025, time.June)

	if len(s.DayRows) != 30 {
		t.Fatalf("expected 30 day rows for June, got %d", len(s.DayRows))
	}

	// June 2 carries the entry and 1h of complementary hours.
	row := s.DayRows[1]
	if row.Entry == nil {
		t.Fatal("expected an entry on June 2")
	}
	if !row.HoursDone.Equal(dec(9)) {
		t.Errorf("expected 9h on June 2, got %v", row.HoursDone)
	}
	if !row.ComplementaryHours.Equal(dec(1)) {
		t.Errorf("expected 1 complementary hour on June 2, got %v", row.ComplementaryHours)
	}

	// June 1 has no entry and zero figures.
	if s.DayRows[0].Entry != nil {
		t.Error("expected no entry on June 1")
	}
	if !s.DayRows[0].HoursDone.IsZero() {
		t.Errorf("expected 0h on June 1, got %v", s.DayRows[0].HoursDone)
	}
}

func TestMonthlySummary_StraddlingWeekEntries(t *testing.T) {
	// GIVEN: a 46h entry on Wed 2025-05-28, in the week straddling into June
	// WHEN: computing June with the padded entry set
	// THEN: the May hours feed weekly overtime but not June's month totals
	c := calc.NewCalculator()
	entries := []calc.TimeEntry{
		entry(day(2025, time.May, 28), 2760), // 46h
		entry(day(2025, time.June, 2), 480),
	}

	s := c.MonthlySummary(fullContract(), entries, 2025, time.June)

	if !s.HoursDone.Equal(dec(8)) {
		t.Errorf("expected only June's 8h in hours done, got %v", s.HoursDone)
	}
	if !s.Weekly.TotalOvertimeHours.Equal(dec(1)) {
		t.Errorf("expected 1h overtime from the straddling week, got %v",
			s.Weekly.TotalOvertimeHours)
	}
	if len(s.MonthEntries) != 1 {
		t.Errorf("expected 1 month entry, got %d", len(s.MonthEntries))
	}
}

func TestMonthlySummary_AbsenceEntriesExcludedEverywhere(t *testing.T) {
	c := calc.NewCalculator()
	entries := []calc.TimeEntry{
		{
			Date:             day(2025, time.June, 2),
			DurationMinutes:  600,
			MealsCount:       2,
			IsPlannedAbsence: true,
		},
	}

	s := c.MonthlySummary(fullContract(), entries, 2025, time.June)

	if !s.HoursDone.IsZero() {
		t.Errorf("expected 0 hours done, got %v", s.HoursDone)
	}
	if !s.ComplementaryHoursMonth.IsZero() {
		t.Errorf("expected 0 complementary hours, got %v", s.ComplementaryHoursMonth)
	}
	if s.Indemnities.MealsTotalMonth != 0 {
		t.Errorf("expected 0 meals, got %d", s.Indemnities.MealsTotalMonth)
	}
	// The absence day still shows its recorded duration in the day rows.
	if !s.DayRows[1].HoursDone.Equal(dec(10)) {
		t.Errorf("expected the day row to show the recorded 10h, got %v",
			s.DayRows[1].HoursDone)
	}
	if !s.DayRows[1].ComplementaryHours.IsZero() {
		t.Errorf("expected 0 complementary hours on the absence row, got %v",
			s.DayRows[1].ComplementaryHours)
	}
}

func TestRound2_Idempotent(t *testing.T) {
	values := []float64{634.93, 0, 496.01, -12.5, 153.33}
	for _, v := range values {
		once := calc.Round2(dec(v))
		if !calc.Round2(once).Equal(once) {
			t.Errorf("rounding %v twice changed the value", v)
		}
	}
}

func TestMonthlySummary_EmptyMonth(t *testing.T) {
	// No entries at all: base pay is still owed (mensualisation).
	c := calc.NewCalculator()

	s := c.MonthlySummary(fullContract(), nil, 2025, time.June)

	if !s.HoursDone.IsZero() {
		t.Errorf("expected 0 hours done, got %v", s.HoursDone)
	}
	if !decEqual(s.Gross.BrutBase, dec(1840).Div(dec(12)).Mul(dec(4))) {
		t.Errorf("expected smoothed base pay for an empty month, got %v", s.Gross.BrutBase)
	}
	if len(s.DayRows) != 30 {
		t.Errorf("expected 30 day rows, got %d", len(s.DayRows))
	}
}
