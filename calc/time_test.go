package calc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assmat/paie-engine/calc"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// decEqual compares two decimals with a tiny tolerance, for results of
// non-terminating divisions.
func decEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(decimal.NewFromFloat(0.000001))
}

func day(year int, month time.Month, d int) calc.Day {
	return calc.NewDay(year, month, d)
}

// =============================================================================
// DAY TESTS
// =============================================================================

func TestDay_ISOWeekday(t *testing.T) {
	// 2025-06-02 is a Monday, 2025-06-08 a Sunday
	cases := []struct {
		day  calc.Day
		want int
	}{
		{day(2025, time.June, 2), 1},
		{day(2025, time.June, 4), 3},
		{day(2025, time.June, 7), 6},
		{day(2025, time.June, 8), 7},
	}
	for _, c := range cases {
		if got := c.day.ISOWeekday(); got != c.want {
			t.Errorf("%s: expected weekday %d, got %d", c.day, c.want, got)
		}
	}
}

func TestDay_WeekStart_MapsEveryDayToItsMonday(t *testing.T) {
	monday := day(2025, time.June, 2)
	for offset := 0; offset < 7; offset++ {
		d := monday.AddDays(offset)
		if !d.WeekStart().Equal(monday) {
			t.Errorf("%s: expected week start %s, got %s", d, monday, d.WeekStart())
		}
		if !d.WeekEnd().Equal(day(2025, time.June, 8)) {
			t.Errorf("%s: expected week end 2025-06-08, got %s", d, d.WeekEnd())
		}
	}
}

func TestIsContractualWeekday(t *testing.T) {
	// GIVEN: a 3-day week (Mon, Tue, Wed)
	// THEN: Wednesday is contractual, Thursday is not
	wednesday := day(2025, time.June, 4)
	thursday := day(2025, time.June, 5)

	if !calc.IsContractualWeekday(wednesday, 3) {
		t.Error("Wednesday should be contractual with daysPerWeek=3")
	}
	if calc.IsContractualWeekday(thursday, 3) {
		t.Error("Thursday should not be contractual with daysPerWeek=3")
	}
}

func TestParseDay(t *testing.T) {
	d, err := calc.ParseDay("2025-06-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(day(2025, time.June, 2)) {
		t.Errorf("expected 2025-06-02, got %s", d)
	}

	if _, err := calc.ParseDay("02/06/2025"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

// =============================================================================
// PERIOD TESTS
// =============================================================================

func TestPeriod_Contains_InclusiveBounds(t *testing.T) {
	p := calc.Period{Start: day(2025, time.July, 7), End: day(2025, time.July, 11)}

	if !p.Contains(day(2025, time.July, 7)) {
		t.Error("start day should be contained")
	}
	if !p.Contains(day(2025, time.July, 11)) {
		t.Error("end day should be contained")
	}
	if p.Contains(day(2025, time.July, 12)) {
		t.Error("day after end should not be contained")
	}
}

func TestPeriod_Days_SingleDay(t *testing.T) {
	p := calc.Period{Start: day(2025, time.July, 7), End: day(2025, time.July, 7)}
	if got := len(p.Days()); got != 1 {
		t.Errorf("expected 1 day, got %d", got)
	}
}

func TestMonthPeriod(t *testing.T) {
	p := calc.MonthPeriod(2025, time.June)
	if !p.Start.Equal(day(2025, time.June, 1)) || !p.End.Equal(day(2025, time.June, 30)) {
		t.Errorf("expected [2025-06-01, 2025-06-30], got %s", p)
	}

	// February in a leap year
	feb := calc.MonthPeriod(2024, time.February)
	if !feb.End.Equal(day(2024, time.February, 29)) {
		t.Errorf("expected leap February to end on the 29th, got %s", feb.End)
	}
}

func TestPaddedMonthPeriod_StretchesToFullWeeks(t *testing.T) {
	// GIVEN: June 2025 starts on a Sunday and ends on a Monday
	// THEN: the padded period runs from the Monday before June 1 through
	//       the Sunday after June 30
	p := calc.PaddedMonthPeriod(2025, time.June)
	if !p.Start.Equal(day(2025, time.May, 26)) {
		t.Errorf("expected padded start 2025-05-26, got %s", p.Start)
	}
	if !p.End.Equal(day(2025, time.July, 6)) {
		t.Errorf("expected padded end 2025-07-06, got %s", p.End)
	}
}

// =============================================================================
// CLOCK TESTS
// =============================================================================

func TestDailyHours_ComputesElapsedHours(t *testing.T) {
	hours, err := calc.DailyHours("08:30", "17:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hours.Equal(dec(8.5)) {
		t.Errorf("expected 8.5 hours, got %v", hours)
	}
}

func TestDailyHours_EndBeforeStart_Fails(t *testing.T) {
	_, err := calc.DailyHours("17:00", "08:30")
	if err == nil {
		t.Fatal("expected error when end precedes start")
	}
	if !errors.Is(err, calc.ErrInvalidTimeRange) {
		t.Errorf("expected ErrInvalidTimeRange, got %v", err)
	}
	if !calc.IsClientError(err) {
		t.Error("time range errors should be client errors")
	}
}

func TestDailyHours_EndEqualsStart_Fails(t *testing.T) {
	if _, err := calc.DailyHours("09:00", "09:00"); err == nil {
		t.Fatal("expected error when end equals start")
	}
}

func TestDailyHours_MalformedClock_Fails(t *testing.T) {
	_, err := calc.DailyHours("9h30", "17:00")
	if err == nil {
		t.Fatal("expected error for malformed clock")
	}
	if !errors.Is(err, calc.ErrMalformedClock) {
		t.Errorf("expected ErrMalformedClock, got %v", err)
	}
}
