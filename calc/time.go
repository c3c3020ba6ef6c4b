/*
time.go - Calendar and clock primitives

PURPOSE:
  Day-granular calendar arithmetic plus clock-string parsing. Everything
  the payroll pipeline needs to ask about dates lives here: contractual
  weekdays, Monday-Sunday week boundaries, month enumeration.

KEY CONCEPTS:
  - Day: a calendar day, normalized to UTC midnight
  - Period: an inclusive [Start, End] day range
  - Contractual weekday: ISO weekday (Mon=1..Sun=7) <= daysPerWeek.
    Contractual days are always the FIRST N weekdays starting Monday;
    this is a domain rule of the assmat schedule model, not a generic
    scheduling concept.

SEE ALSO:
  - mensualisation.go: Iterates periods to count cancelled days
  - hours.go: Buckets entries by week start
*/
package calc

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAY - Calendar day at UTC midnight
// =============================================================================

type Day struct {
	Time time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses an ISO date ("2006-01-02").
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDay(t.Year(), t.Month(), t.Day()), nil
}

// Comparison
func (d Day) Before(other Day) bool        { return d.Time.Before(other.Time) }
func (d Day) After(other Day) bool         { return d.Time.After(other.Time) }
func (d Day) Equal(other Day) bool         { return d.Time.Equal(other.Time) }
func (d Day) BeforeOrEqual(other Day) bool { return d.Before(other) || d.Equal(other) }
func (d Day) AfterOrEqual(other Day) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Day) Year() int         { return d.Time.Year() }
func (d Day) Month() time.Month { return d.Time.Month() }
func (d Day) DayOfMonth() int   { return d.Time.Day() }
func (d Day) IsZero() bool      { return d.Time.IsZero() }

// ISOWeekday returns the weekday with Monday=1 .. Sunday=7.
func (d Day) ISOWeekday() int {
	wd := int(d.Time.Weekday()) // 0=Sunday .. 6=Saturday
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekStart returns the Monday that starts this day's calendar week.
func (d Day) WeekStart() Day { return d.AddDays(1 - d.ISOWeekday()) }

// WeekEnd returns the Sunday that ends this day's calendar week.
func (d Day) WeekEnd() Day { return d.AddDays(7 - d.ISOWeekday()) }

func (d Day) String() string { return d.Time.Format("2006-01-02") }

// IsContractualWeekday reports whether the day is one of the contract's
// working days. Working days are Monday through the daysPerWeek-th weekday.
func IsContractualWeekday(d Day, daysPerWeek int) bool {
	return d.ISOWeekday() <= daysPerWeek
}

// =============================================================================
// PERIOD - Inclusive day range
// =============================================================================

type Period struct {
	Start Day
	End   Day
}

// Contains returns true if the day is within the period [Start, End].
func (p Period) Contains(d Day) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period, in order.
func (p Period) Days() []Day {
	var days []Day
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthPeriod returns the period covering the given calendar month.
func MonthPeriod(year int, month time.Month) Period {
	start := NewDay(year, month, 1)
	end := Day{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
	return Period{Start: start, End: end}
}

// PaddedMonthPeriod returns the month stretched to full calendar weeks:
// the Monday of the month's first week through the Sunday of its last week.
// Weekly overtime must be computed over this range so a week straddling two
// months is neither truncated nor double-counted.
func PaddedMonthPeriod(year int, month time.Month) Period {
	m := MonthPeriod(year, month)
	return Period{Start: m.Start.WeekStart(), End: m.End.WeekEnd()}
}

// =============================================================================
// CLOCK ARITHMETIC
// =============================================================================

// ParseClockMinutes parses a clock string ("HH:MM") into minutes since
// midnight.
func ParseClockMinutes(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, clock)
	}
	return h*60 + m, nil
}

// DailyHours returns the elapsed hours between two clock strings on the
// same day. The end must be strictly later than the start.
func DailyHours(startTime, endTime string) (decimal.Decimal, error) {
	start, err := ParseClockMinutes(startTime)
	if err != nil {
		return decimal.Zero, err
	}
	end, err := ParseClockMinutes(endTime)
	if err != nil {
		return decimal.Zero, err
	}
	if end <= start {
		return decimal.Zero, &InvalidRangeError{StartTime: startTime, EndTime: endTime}
	}
	return minutesToHours(end - start), nil
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}
