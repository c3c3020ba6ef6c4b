/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the stored records and the decimal-based engine types from the external
  API contract. decimal values cross the boundary as float64; the engine
  keeps the unrounded decimals authoritative.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - calc/summary.go: MonthlySummary / RoundedSummary sources
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/assmat/paie-engine/calc"
	"github.com/assmat/paie-engine/store/sqlite"
)

// =============================================================================
// CONTRACT TYPES
// =============================================================================

// PlannedAbsenceDTO is one planned-absence interval (ISO dates).
type PlannedAbsenceDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// MaintenanceTierDTO is one maintenance fee bracket.
type MaintenanceTierDTO struct {
	MinHours float64 `json:"min_hours"`
	MaxHours float64 `json:"max_hours"`
	Fee      float64 `json:"fee"`
}

// ContractDTO represents a contract in API responses.
type ContractDTO struct {
	ID                       string               `json:"id"`
	ChildName                string               `json:"child_name"`
	StartDate                string               `json:"start_date"`
	EndDate                  *string              `json:"end_date"`
	ContractType             string               `json:"contract_type"`
	HoursPerDay              float64              `json:"hours_per_day"`
	DaysPerWeek              int                  `json:"days_per_week"`
	WeeksPerYear             int                  `json:"weeks_per_year"`
	PlannedAbsences          []PlannedAbsenceDTO  `json:"planned_absences"`
	BaseHourlyRate           float64              `json:"base_hourly_rate"`
	AllowOverride            bool                 `json:"allow_override"`
	OverrideHourlyRate       *float64             `json:"override_hourly_rate,omitempty"`
	EffectiveHourlyRate      float64              `json:"effective_hourly_rate"`
	BillComplementaryHours   bool                 `json:"bill_complementary_hours"`
	OvertimeRatePercent      int                  `json:"overtime_rate_percent"`
	MealFeeEnabled           bool                 `json:"meal_fee_enabled"`
	MealFeePerMeal           float64              `json:"meal_fee_per_meal"`
	DefaultMealsPerDay       int                  `json:"default_meals_per_day"`
	MaintenanceFeeEnabled    bool                 `json:"maintenance_fee_enabled"`
	MaintenanceFeeTiers      []MaintenanceTierDTO `json:"maintenance_fee_tiers"`
	ApplyPrecariousnessPrime bool                 `json:"apply_precariousness_prime"`
	CreatedAt                string               `json:"created_at,omitempty"`
	UpdatedAt                string               `json:"updated_at,omitempty"`
}

// ContractRequest is the request to create or update a contract.
// A base_hourly_rate of 0 means "resolve from the reference grid".
type ContractRequest struct {
	ChildName                string               `json:"child_name"`
	StartDate                string               `json:"start_date"`
	EndDate                  *string              `json:"end_date"`
	ContractType             string               `json:"contract_type"`
	HoursPerDay              float64              `json:"hours_per_day"`
	DaysPerWeek              int                  `json:"days_per_week"`
	WeeksPerYear             int                  `json:"weeks_per_year"`
	PlannedAbsences          []PlannedAbsenceDTO  `json:"planned_absences"`
	BaseHourlyRate           float64              `json:"base_hourly_rate"`
	AllowOverride            bool                 `json:"allow_override"`
	OverrideHourlyRate       *float64             `json:"override_hourly_rate"`
	BillComplementaryHours   bool                 `json:"bill_complementary_hours"`
	OvertimeRatePercent      int                  `json:"overtime_rate_percent"`
	MealFeeEnabled           bool                 `json:"meal_fee_enabled"`
	MealFeePerMeal           float64              `json:"meal_fee_per_meal"`
	DefaultMealsPerDay       int                  `json:"default_meals_per_day"`
	MaintenanceFeeEnabled    bool                 `json:"maintenance_fee_enabled"`
	MaintenanceFeeTiers      []MaintenanceTierDTO `json:"maintenance_fee_tiers"`
	ApplyPrecariousnessPrime bool                 `json:"apply_precariousness_prime"`
}

// =============================================================================
// TIME ENTRY TYPES
// =============================================================================

// TimeEntryDTO represents a daily entry in API responses.
type TimeEntryDTO struct {
	ID                 string  `json:"id"`
	ContractID         string  `json:"contract_id"`
	Date               string  `json:"date"`
	StartTime          *string `json:"start_time"`
	EndTime            *string `json:"end_time"`
	DurationMinutes    int     `json:"duration_minutes"`
	MealsCount         int     `json:"meals_count"`
	IsPlannedAbsence   bool    `json:"is_planned_absence"`
	IsUnplannedAbsence bool    `json:"is_unplanned_absence"`
	IsHoliday          bool    `json:"is_holiday"`
	IsUnavailable      bool    `json:"is_unavailable"`
	Notes              string  `json:"notes,omitempty"`
}

// TimeEntryRequest is the request to record or update a daily entry.
// Start and end times must both be set or both be null.
type TimeEntryRequest struct {
	Date               string  `json:"date"`
	StartTime          *string `json:"start_time"`
	EndTime            *string `json:"end_time"`
	MealsCount         int     `json:"meals_count"`
	IsPlannedAbsence   bool    `json:"is_planned_absence"`
	IsUnplannedAbsence bool    `json:"is_unplanned_absence"`
	IsHoliday          bool    `json:"is_holiday"`
	IsUnavailable      bool    `json:"is_unavailable"`
	Notes              string  `json:"notes"`
}

// =============================================================================
// SETTINGS TYPES
// =============================================================================

// GridRowDTO is one reference grid line.
type GridRowDTO struct {
	DaysPerWeek    int     `json:"days_per_week"`
	HoursPerDay    float64 `json:"hours_per_day"`
	BaseHourlyRate float64 `json:"base_hourly_rate"`
	Note           string  `json:"note,omitempty"`
}

// SettingsDTO represents the singleton settings.
type SettingsDTO struct {
	NetCoefficient float64      `json:"net_coefficient"`
	ReferenceGrid  []GridRowDTO `json:"reference_grid"`
}

// SettingsRequest replaces the reference grid. The net coefficient is
// not editable through the API.
type SettingsRequest struct {
	ReferenceGrid []GridRowDTO `json:"reference_grid"`
}

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// ExpectedHoursDTO mirrors calc.ExpectedHoursResult.
type ExpectedHoursDTO struct {
	WeeklyHours                  float64 `json:"weekly_hours"`
	AnnualContractHours          float64 `json:"annual_contract_hours"`
	AnnualAfterPlannedAbsences   float64 `json:"annual_after_planned_absences"`
	MonthlyExpectedHoursSmoothed float64 `json:"monthly_expected_hours_smoothed"`
	CancelledDaysTotal           int     `json:"cancelled_days_total"`
	CancelledDaysInMonth         int     `json:"cancelled_days_in_month"`
}

// WeekOvertimeDTO is one week of the overtime detail.
type WeekOvertimeDTO struct {
	WeekStart     string  `json:"week_start"`
	HoursDone     float64 `json:"hours_done"`
	OvertimeHours float64 `json:"overtime_hours"`
}

type WeeklyOvertimeDTO struct {
	PerWeek            []WeekOvertimeDTO `json:"per_week"`
	TotalOvertimeHours float64           `json:"total_overtime_hours"`
}

// GrossNetDTO mirrors calc.GrossNetResult.
type GrossNetDTO struct {
	BrutBase          float64 `json:"brut_base"`
	BrutComplementary float64 `json:"brut_complementary"`
	BrutOvertime      float64 `json:"brut_overtime"`
	PrimeAnnuelle     float64 `json:"prime_annuelle"`
	PrimeMensuelle    float64 `json:"prime_mensuelle"`
	TotalBrut         float64 `json:"total_brut"`
	Net               float64 `json:"net"`
}

type IndemnitiesDTO struct {
	MealsTotalMonth      int     `json:"meals_total_month"`
	MealIndemnity        float64 `json:"meal_indemnity"`
	MaintenanceIndemnity float64 `json:"maintenance_indemnity"`
}

// DayRowDTO is one calendar day of the month's breakdown table.
type DayRowDTO struct {
	Date               string        `json:"date"`
	Entry              *TimeEntryDTO `json:"entry"`
	HoursDone          float64       `json:"hours_done"`
	ComplementaryHours float64       `json:"complementary_hours"`
}

// RoundedDTO carries the 2-decimal presentation figures.
type RoundedDTO struct {
	ExpectedMonthlyHours    float64 `json:"expected_monthly_hours"`
	HoursDone               float64 `json:"hours_done"`
	ComplementaryHoursMonth float64 `json:"complementary_hours_month"`
	OvertimeHoursMonth      float64 `json:"overtime_hours_month"`
	BrutBase                float64 `json:"brut_base"`
	BrutComplementary       float64 `json:"brut_complementary"`
	BrutOvertime            float64 `json:"brut_overtime"`
	PrimeMensuelle          float64 `json:"prime_mensuelle"`
	TotalBrut               float64 `json:"total_brut"`
	Net                     float64 `json:"net"`
	MealIndemnity           float64 `json:"meal_indemnity"`
	MaintenanceIndemnity    float64 `json:"maintenance_indemnity"`
	TotalAPayer             float64 `json:"total_a_payer"`
}

// SummaryDTO is the monthly report body.
type SummaryDTO struct {
	Year                    int               `json:"year"`
	Month                   int               `json:"month"`
	Expected                ExpectedHoursDTO  `json:"expected"`
	HoursDone               float64           `json:"hours_done"`
	ComplementaryHoursMonth float64           `json:"complementary_hours_month"`
	Weekly                  WeeklyOvertimeDTO `json:"weekly"`
	Gross                   GrossNetDTO       `json:"gross"`
	Indemnities             IndemnitiesDTO    `json:"indemnities"`
	TotalAPayer             float64           `json:"total_a_payer"`
	DayRows                 []DayRowDTO       `json:"day_rows"`
	Rounded                 RoundedDTO        `json:"rounded"`
}

// SummaryResponse wraps the full summary endpoint payload.
type SummaryResponse struct {
	Contract ContractDTO    `json:"contract"`
	Entries  []TimeEntryDTO `json:"entries"`
	Summary  SummaryDTO     `json:"summary"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toContractDTO(c sqlite.Contract) ContractDTO {
	absences := make([]PlannedAbsenceDTO, len(c.PlannedAbsences))
	for i, a := range c.PlannedAbsences {
		absences[i] = PlannedAbsenceDTO{StartDate: a.StartDate, EndDate: a.EndDate}
	}
	tiers := make([]MaintenanceTierDTO, len(c.MaintenanceFeeTiers))
	for i, t := range c.MaintenanceFeeTiers {
		tiers[i] = MaintenanceTierDTO{MinHours: t.MinHours, MaxHours: t.MaxHours, Fee: t.Fee}
	}

	dto := ContractDTO{
		ID:                       c.ID,
		ChildName:                c.ChildName,
		StartDate:                c.StartDate.Format("2006-01-02"),
		ContractType:             c.ContractType,
		HoursPerDay:              c.HoursPerDay,
		DaysPerWeek:              c.DaysPerWeek,
		WeeksPerYear:             c.WeeksPerYear,
		PlannedAbsences:          absences,
		BaseHourlyRate:           c.BaseHourlyRate,
		AllowOverride:            c.AllowOverride,
		OverrideHourlyRate:       c.OverrideHourlyRate,
		EffectiveHourlyRate:      c.EffectiveHourlyRate(),
		BillComplementaryHours:   c.BillComplementaryHours,
		OvertimeRatePercent:      c.OvertimeRatePercent,
		MealFeeEnabled:           c.MealFeeEnabled,
		MealFeePerMeal:           c.MealFeePerMeal,
		DefaultMealsPerDay:       c.DefaultMealsPerDay,
		MaintenanceFeeEnabled:    c.MaintenanceFeeEnabled,
		MaintenanceFeeTiers:      tiers,
		ApplyPrecariousnessPrime: c.ApplyPrecariousnessPrime,
		CreatedAt:                c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                c.UpdatedAt.Format(time.RFC3339),
	}
	if c.EndDate != nil {
		end := c.EndDate.Format("2006-01-02")
		dto.EndDate = &end
	}
	return dto
}

func toEntryDTO(e sqlite.TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		ID:                 e.ID,
		ContractID:         e.ContractID,
		Date:               e.Date.Format("2006-01-02"),
		DurationMinutes:    e.DurationMinutes,
		MealsCount:         e.MealsCount,
		IsPlannedAbsence:   e.IsPlannedAbsence,
		IsUnplannedAbsence: e.IsUnplannedAbsence,
		IsHoliday:          e.IsHoliday,
		IsUnavailable:      e.IsUnavailable,
		Notes:              e.Notes,
	}
	if e.StartTime != "" {
		dto.StartTime = strPtr(e.StartTime)
	}
	if e.EndTime != "" {
		dto.EndTime = strPtr(e.EndTime)
	}
	return dto
}

func toEntryDTOs(entries []sqlite.TimeEntry) []TimeEntryDTO {
	dtos := make([]TimeEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

func toSettingsDTO(s sqlite.Settings) SettingsDTO {
	grid := make([]GridRowDTO, len(s.ReferenceGrid))
	for i, r := range s.ReferenceGrid {
		grid[i] = GridRowDTO{
			DaysPerWeek:    r.DaysPerWeek,
			HoursPerDay:    r.HoursPerDay,
			BaseHourlyRate: r.BaseHourlyRate,
			Note:           r.Note,
		}
	}
	return SettingsDTO{NetCoefficient: s.NetCoefficient, ReferenceGrid: grid}
}

// toCalcEntry converts a stored entry into engine input.
func toCalcEntry(e sqlite.TimeEntry) calc.TimeEntry {
	return calc.TimeEntry{
		Date:               calc.NewDay(e.Date.Year(), e.Date.Month(), e.Date.Day()),
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		DurationMinutes:    e.DurationMinutes,
		MealsCount:         e.MealsCount,
		IsPlannedAbsence:   e.IsPlannedAbsence,
		IsUnplannedAbsence: e.IsUnplannedAbsence,
		IsHoliday:          e.IsHoliday,
		IsUnavailable:      e.IsUnavailable,
		Notes:              e.Notes,
	}
}

// toContractParams builds the engine's contract input, resolving the
// effective hourly rate and parsing the stored absence intervals.
func toContractParams(c sqlite.Contract) (calc.ContractParams, error) {
	absences := make([]calc.Period, 0, len(c.PlannedAbsences))
	for _, a := range c.PlannedAbsences {
		start, err := calc.ParseDay(a.StartDate)
		if err != nil {
			return calc.ContractParams{}, err
		}
		end, err := calc.ParseDay(a.EndDate)
		if err != nil {
			return calc.ContractParams{}, err
		}
		absences = append(absences, calc.Period{Start: start, End: end})
	}

	tiers := make([]calc.MaintenanceTier, len(c.MaintenanceFeeTiers))
	for i, t := range c.MaintenanceFeeTiers {
		tiers[i] = calc.MaintenanceTier{
			MinHours: decimal.NewFromFloat(t.MinHours),
			MaxHours: decimal.NewFromFloat(t.MaxHours),
			Fee:      decimal.NewFromFloat(t.Fee),
		}
	}

	return calc.ContractParams{
		HoursPerDay:              decimal.NewFromFloat(c.HoursPerDay),
		DaysPerWeek:              c.DaysPerWeek,
		WeeksPerYear:             c.WeeksPerYear,
		PlannedAbsences:          absences,
		EffectiveHourlyRate:      decimal.NewFromFloat(c.EffectiveHourlyRate()),
		BillComplementaryHours:   c.BillComplementaryHours,
		OvertimeRatePercent:      c.OvertimeRatePercent,
		ContractType:             calc.ContractType(c.ContractType),
		ApplyPrecariousnessPrime: c.ApplyPrecariousnessPrime,
		MealFeeEnabled:           c.MealFeeEnabled,
		MealFeePerMeal:           decimal.NewFromFloat(c.MealFeePerMeal),
		MaintenanceFeeEnabled:    c.MaintenanceFeeEnabled,
		MaintenanceFeeTiers:      tiers,
	}, nil
}

// toSummaryDTO flattens the engine output for the API.
func toSummaryDTO(s *calc.MonthlySummary) SummaryDTO {
	perWeek := make([]WeekOvertimeDTO, len(s.Weekly.PerWeek))
	for i, w := range s.Weekly.PerWeek {
		perWeek[i] = WeekOvertimeDTO{
			WeekStart:     w.WeekStart.String(),
			HoursDone:     w.HoursDone.InexactFloat64(),
			OvertimeHours: w.OvertimeHours.InexactFloat64(),
		}
	}

	dayRows := make([]DayRowDTO, len(s.DayRows))
	for i, row := range s.DayRows {
		dto := DayRowDTO{
			Date:               row.Date.String(),
			HoursDone:          row.HoursDone.InexactFloat64(),
			ComplementaryHours: row.ComplementaryHours.InexactFloat64(),
		}
		if row.Entry != nil {
			entry := toCalcEntryDTO(*row.Entry)
			dto.Entry = &entry
		}
		dayRows[i] = dto
	}

	rounded := s.Rounded()

	return SummaryDTO{
		Year:  s.Year,
		Month: int(s.Month),
		Expected: ExpectedHoursDTO{
			WeeklyHours:                  s.Expected.WeeklyHours.InexactFloat64(),
			AnnualContractHours:          s.Expected.AnnualContractHours.InexactFloat64(),
			AnnualAfterPlannedAbsences:   s.Expected.AnnualAfterPlannedAbsences.InexactFloat64(),
			MonthlyExpectedHoursSmoothed: s.Expected.MonthlyExpectedHoursSmoothed.InexactFloat64(),
			CancelledDaysTotal:           s.Expected.CancelledDaysTotal,
			CancelledDaysInMonth:         s.Expected.CancelledDaysInMonth,
		},
		HoursDone:               s.HoursDone.InexactFloat64(),
		ComplementaryHoursMonth: s.ComplementaryHoursMonth.InexactFloat64(),
		Weekly: WeeklyOvertimeDTO{
			PerWeek:            perWeek,
			TotalOvertimeHours: s.Weekly.TotalOvertimeHours.InexactFloat64(),
		},
		Gross: GrossNetDTO{
			BrutBase:          s.Gross.BrutBase.InexactFloat64(),
			BrutComplementary: s.Gross.BrutComplementary.InexactFloat64(),
			BrutOvertime:      s.Gross.BrutOvertime.InexactFloat64(),
			PrimeAnnuelle:     s.Gross.PrimeAnnuelle.InexactFloat64(),
			PrimeMensuelle:    s.Gross.PrimeMensuelle.InexactFloat64(),
			TotalBrut:         s.Gross.TotalBrut.InexactFloat64(),
			Net:               s.Gross.Net.InexactFloat64(),
		},
		Indemnities: IndemnitiesDTO{
			MealsTotalMonth:      s.Indemnities.MealsTotalMonth,
			MealIndemnity:        s.Indemnities.MealIndemnity.InexactFloat64(),
			MaintenanceIndemnity: s.Indemnities.MaintenanceIndemnity.InexactFloat64(),
		},
		TotalAPayer: s.TotalAPayer.InexactFloat64(),
		DayRows:     dayRows,
		Rounded: RoundedDTO{
			ExpectedMonthlyHours:    rounded.ExpectedMonthlyHours.InexactFloat64(),
			HoursDone:               rounded.HoursDone.InexactFloat64(),
			ComplementaryHoursMonth: rounded.ComplementaryHoursMonth.InexactFloat64(),
			OvertimeHoursMonth:      rounded.OvertimeHoursMonth.InexactFloat64(),
			BrutBase:                rounded.BrutBase.InexactFloat64(),
			BrutComplementary:       rounded.BrutComplementary.InexactFloat64(),
			BrutOvertime:            rounded.BrutOvertime.InexactFloat64(),
			PrimeMensuelle:          rounded.PrimeMensuelle.InexactFloat64(),
			TotalBrut:               rounded.TotalBrut.InexactFloat64(),
			Net:                     rounded.Net.InexactFloat64(),
			MealIndemnity:           rounded.MealIndemnity.InexactFloat64(),
			MaintenanceIndemnity:    rounded.MaintenanceIndemnity.InexactFloat64(),
			TotalAPayer:             rounded.TotalAPayer.InexactFloat64(),
		},
	}
}

// toCalcEntryDTO renders an engine entry (used in day rows, where the
// stored id is not carried through the pure pipeline).
func toCalcEntryDTO(e calc.TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		Date:               e.Date.String(),
		DurationMinutes:    e.DurationMinutes,
		MealsCount:         e.MealsCount,
		IsPlannedAbsence:   e.IsPlannedAbsence,
		IsUnplannedAbsence: e.IsUnplannedAbsence,
		IsHoliday:          e.IsHoliday,
		IsUnavailable:      e.IsUnavailable,
		Notes:              e.Notes,
	}
	if e.StartTime != "" {
		dto.StartTime = strPtr(e.StartTime)
	}
	if e.EndTime != "" {
		dto.EndTime = strPtr(e.EndTime)
	}
	return dto
}
