/*
handlers.go - HTTP API handlers for the contract payroll service

PURPOSE:
  Exposes contracts, time entries, settings and the monthly summary via
  REST. Handles HTTP request/response, JSON serialization and input
  validation, and delegates all calculation to the calc package.

ENDPOINTS:
  Contracts:
    GET    /api/contracts                 List contracts (newest first)
    POST   /api/contracts                 Create contract
    GET    /api/contracts/{id}            Get contract
    PUT    /api/contracts/{id}            Update contract
    DELETE /api/contracts/{id}            Delete contract (and entries)

  Entries:
    GET    /api/contracts/{id}/entries    List entries (?month=YYYY-MM)
    POST   /api/contracts/{id}/entries    Upsert entry by date
    PUT    /api/entries/{id}              Update entry
    DELETE /api/entries/{id}              Delete entry

  Summary:
    GET    /api/contracts/{id}/summary    Monthly summary (?month=YYYY-MM)

  Settings:
    GET    /api/settings                  Get settings (seeded on first use)
    PUT    /api/settings                  Replace the reference grid

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (value ranges from the contract rules)
  3. Load records, build engine input
  4. Run the pure calculation where needed
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (incl. invalid time ranges)
  - 404: Resource not found
  - 500: Internal errors

SUMMARY PRECONDITION:
  The summary handler loads entries for the FULL calendar weeks
  overlapping the month (calc.PaddedMonthPeriod) so weekly overtime on
  straddling weeks is computed correctly.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/assmat/paie-engine/calc"
	"github.com/assmat/paie-engine/rates"
	"github.com/assmat/paie-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// calculator builds the engine calculator from the persisted settings,
// so the net coefficient is injected rather than hard-coded here.
func (h *Handler) calculator(r *http.Request) (calc.Calculator, *sqlite.Settings, error) {
	settings, err := h.Store.GetOrCreateSettings(r.Context())
	if err != nil {
		return calc.Calculator{}, nil, err
	}
	c := calc.NewCalculator()
	c.NetCoefficient = decimal.NewFromFloat(settings.NetCoefficient)
	return c, settings, nil
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns all contracts, newest first.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Store.ListContracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetContract returns a single contract.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	contract, err := h.Store.GetContract(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toContractDTO(*contract))
}

// CreateContract creates a new contract. When the payload carries no
// positive base rate, the rate is resolved from the reference grid.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if msg := validateContractRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg, nil)
		return
	}

	if req.BaseHourlyRate <= 0 {
		settings, err := h.Store.GetOrCreateSettings(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
			return
		}
		base := rates.ResolveBaseRate(toGrid(settings.ReferenceGrid), req.DaysPerWeek, decimal.NewFromFloat(req.HoursPerDay))
		req.BaseHourlyRate = base.InexactFloat64()
	}

	contract := contractFromRequest(req)
	contract.ID = fmt.Sprintf("contract-%d", time.Now().UnixNano())

	if err := h.Store.SaveContract(r.Context(), contract); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create contract", err)
		return
	}

	stored, err := h.Store.GetContract(r.Context(), contract.ID)
	if err != nil || stored == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load created contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(*stored))
}

// UpdateContract replaces a contract's parameters.
func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetContract(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}

	var req ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if msg := validateContractRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg, nil)
		return
	}

	contract := contractFromRequest(req)
	contract.ID = id
	contract.CreatedAt = existing.CreatedAt

	if err := h.Store.SaveContract(r.Context(), contract); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update contract", err)
		return
	}

	stored, err := h.Store.GetContract(r.Context(), id)
	if err != nil || stored == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load updated contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(*stored))
}

// DeleteContract removes a contract and its entries.
func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteContract(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete contract", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// =============================================================================
// TIME ENTRY HANDLERS
// =============================================================================

// ListEntries returns a contract's entries, optionally restricted to a
// month (?month=YYYY-MM).
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")

	var from, to *time.Time
	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		year, month, err := parseMonth(monthParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month parameter (use YYYY-MM)", err)
			return
		}
		period := calc.MonthPeriod(year, month)
		start, end := period.Start.Time, period.End.Time
		from, to = &start, &end
	}

	entries, err := h.Store.ListEntries(r.Context(), contractID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// UpsertEntry records a daily entry, replacing any existing entry on the
// same date. The duration is derived from the clock times here, once, at
// write time.
func (h *Handler) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")

	contract, err := h.Store.GetContract(r.Context(), contractID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}

	var req TimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if msg := validateEntryRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg, nil)
		return
	}

	durationMinutes, err := entryDuration(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time range", err)
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	entry := sqlite.TimeEntry{
		ID:                 fmt.Sprintf("entry-%d", time.Now().UnixNano()),
		ContractID:         contractID,
		Date:               date,
		StartTime:          strOrEmpty(req.StartTime),
		EndTime:            strOrEmpty(req.EndTime),
		DurationMinutes:    durationMinutes,
		MealsCount:         req.MealsCount,
		IsPlannedAbsence:   req.IsPlannedAbsence,
		IsUnplannedAbsence: req.IsUnplannedAbsence,
		IsHoliday:          req.IsHoliday,
		IsUnavailable:      req.IsUnavailable,
		Notes:              req.Notes,
	}

	stored, err := h.Store.UpsertEntry(r.Context(), entry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(*stored))
}

// UpdateEntry updates an existing entry by id.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get entry", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Entry not found", nil)
		return
	}

	var req TimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if msg := validateEntryRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg, nil)
		return
	}

	durationMinutes, err := entryDuration(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time range", err)
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	entry := *existing
	entry.Date = date
	entry.StartTime = strOrEmpty(req.StartTime)
	entry.EndTime = strOrEmpty(req.EndTime)
	entry.DurationMinutes = durationMinutes
	entry.MealsCount = req.MealsCount
	entry.IsPlannedAbsence = req.IsPlannedAbsence
	entry.IsUnplannedAbsence = req.IsUnplannedAbsence
	entry.IsHoliday = req.IsHoliday
	entry.IsUnavailable = req.IsUnavailable
	entry.Notes = req.Notes

	if err := h.Store.UpdateEntry(r.Context(), entry); err != nil {
		if sqlite.IsUniqueConstraintError(err) {
			writeError(w, http.StatusConflict, "An entry already exists on that date", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update entry", err)
		return
	}

	stored, err := h.Store.GetEntry(r.Context(), id)
	if err != nil || stored == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load updated entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(*stored))
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// =============================================================================
// SUMMARY HANDLER
// =============================================================================

// GetSummary computes the monthly summary for a contract. Entries are
// loaded for the padded month (full Monday-Sunday weeks) so the weekly
// overtime buckets are complete.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	year, month, err := parseMonthOrNow(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month parameter (use YYYY-MM)", err)
		return
	}

	contract, err := h.Store.GetContract(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}

	calculator, _, err := h.calculator(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	padded := calc.PaddedMonthPeriod(year, month)
	from, to := padded.Start.Time, padded.End.Time
	entries, err := h.Store.ListEntries(r.Context(), id, &from, &to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	params, err := toContractParams(*contract)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Corrupt contract data", err)
		return
	}

	calcEntries := make([]calc.TimeEntry, len(entries))
	for i, e := range entries {
		calcEntries[i] = toCalcEntry(e)
	}

	summary := calculator.MonthlySummary(params, calcEntries, year, month)

	monthPeriod := calc.MonthPeriod(year, month)
	var monthEntries []sqlite.TimeEntry
	for _, e := range entries {
		d := calc.NewDay(e.Date.Year(), e.Date.Month(), e.Date.Day())
		if monthPeriod.Contains(d) {
			monthEntries = append(monthEntries, e)
		}
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		Contract: toContractDTO(*contract),
		Entries:  toEntryDTOs(monthEntries),
		Summary:  toSummaryDTO(summary),
	})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the settings, creating the seed row if needed.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetOrCreateSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(*settings))
}

// UpdateSettings replaces the reference grid. The net coefficient is
// preserved as-is.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if msg := validateSettingsRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg, nil)
		return
	}

	settings, err := h.Store.GetOrCreateSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	grid := make([]sqlite.GridRow, len(req.ReferenceGrid))
	for i, row := range req.ReferenceGrid {
		grid[i] = sqlite.GridRow{
			DaysPerWeek:    row.DaysPerWeek,
			HoursPerDay:    row.HoursPerDay,
			BaseHourlyRate: row.BaseHourlyRate,
			Note:           row.Note,
		}
	}
	settings.ReferenceGrid = grid

	if err := h.Store.SaveSettings(r.Context(), *settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(*settings))
}

// =============================================================================
// VALIDATION
// =============================================================================

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

func validateContractRequest(req *ContractRequest) string {
	if req.ChildName == "" {
		return "child_name is required"
	}
	if !datePattern.MatchString(req.StartDate) {
		return "start_date must be YYYY-MM-DD"
	}
	if req.EndDate != nil && !datePattern.MatchString(*req.EndDate) {
		return "end_date must be YYYY-MM-DD"
	}
	if req.ContractType != string(calc.ContractCDI) && req.ContractType != string(calc.ContractCDD) {
		return "contract_type must be CDI or CDD"
	}
	if req.HoursPerDay <= 0 {
		return "hours_per_day must be positive"
	}
	if req.DaysPerWeek < 2 || req.DaysPerWeek > 5 {
		return "days_per_week must be between 2 and 5"
	}
	if req.WeeksPerYear < 1 || req.WeeksPerYear > 53 {
		return "weeks_per_year must be between 1 and 53"
	}
	for _, a := range req.PlannedAbsences {
		if !datePattern.MatchString(a.StartDate) || !datePattern.MatchString(a.EndDate) {
			return "planned absence dates must be YYYY-MM-DD"
		}
		if a.EndDate < a.StartDate {
			return "planned absence end date must not be before its start date"
		}
	}
	if req.BaseHourlyRate < 0 {
		return "base_hourly_rate must not be negative"
	}
	if req.OverrideHourlyRate != nil && *req.OverrideHourlyRate < 0 {
		return "override_hourly_rate must not be negative"
	}
	switch req.OvertimeRatePercent {
	case 10, 15, 25:
	default:
		return "overtime_rate_percent must be 10, 15 or 25"
	}
	if req.MealFeePerMeal < 0 {
		return "meal_fee_per_meal must not be negative"
	}
	if req.DefaultMealsPerDay < 0 || req.DefaultMealsPerDay > 10 {
		return "default_meals_per_day must be between 0 and 10"
	}
	for _, t := range req.MaintenanceFeeTiers {
		if t.MinHours < 0 || t.MaxHours <= 0 || t.Fee < 0 {
			return "maintenance tier bounds and fee must not be negative"
		}
		if t.MaxHours <= t.MinHours {
			return "maintenance tier max_hours must be greater than min_hours"
		}
	}
	return ""
}

func validateEntryRequest(req *TimeEntryRequest) string {
	if !datePattern.MatchString(req.Date) {
		return "date must be YYYY-MM-DD"
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return "date is not a valid calendar day"
	}
	if (req.StartTime == nil) != (req.EndTime == nil) {
		return "start_time and end_time must both be set or both be null"
	}
	if req.StartTime != nil && (!clockPattern.MatchString(*req.StartTime) || !clockPattern.MatchString(*req.EndTime)) {
		return "start_time and end_time must be HH:MM"
	}
	if req.MealsCount < 0 || req.MealsCount > 10 {
		return "meals_count must be between 0 and 10"
	}
	if len(req.Notes) > 500 {
		return "notes must be at most 500 characters"
	}
	return ""
}

func validateSettingsRequest(req *SettingsRequest) string {
	for _, row := range req.ReferenceGrid {
		if row.DaysPerWeek < 2 || row.DaysPerWeek > 5 {
			return "grid days_per_week must be between 2 and 5"
		}
		if row.HoursPerDay <= 0 {
			return "grid hours_per_day must be positive"
		}
		if row.BaseHourlyRate < 0 {
			return "grid base_hourly_rate must not be negative"
		}
	}
	return ""
}

// =============================================================================
// HELPERS
// =============================================================================

// entryDuration derives the stored duration from the clock times; an
// entry without times has a zero duration.
func entryDuration(req TimeEntryRequest) (int, error) {
	if req.StartTime == nil || req.EndTime == nil {
		return 0, nil
	}
	hours, err := calc.DailyHours(*req.StartTime, *req.EndTime)
	if err != nil {
		return 0, err
	}
	return int(hours.Mul(decimal.NewFromInt(60)).Round(0).IntPart()), nil
}

func contractFromRequest(req ContractRequest) sqlite.Contract {
	absences := make([]sqlite.PlannedAbsence, len(req.PlannedAbsences))
	for i, a := range req.PlannedAbsences {
		absences[i] = sqlite.PlannedAbsence{StartDate: a.StartDate, EndDate: a.EndDate}
	}
	tiers := make([]sqlite.MaintenanceTier, len(req.MaintenanceFeeTiers))
	for i, t := range req.MaintenanceFeeTiers {
		tiers[i] = sqlite.MaintenanceTier{MinHours: t.MinHours, MaxHours: t.MaxHours, Fee: t.Fee}
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	contract := sqlite.Contract{
		ChildName:                req.ChildName,
		StartDate:                startDate,
		ContractType:             req.ContractType,
		HoursPerDay:              req.HoursPerDay,
		DaysPerWeek:              req.DaysPerWeek,
		WeeksPerYear:             req.WeeksPerYear,
		PlannedAbsences:          absences,
		BaseHourlyRate:           req.BaseHourlyRate,
		AllowOverride:            req.AllowOverride,
		OverrideHourlyRate:       req.OverrideHourlyRate,
		BillComplementaryHours:   req.BillComplementaryHours,
		OvertimeRatePercent:      req.OvertimeRatePercent,
		MealFeeEnabled:           req.MealFeeEnabled,
		MealFeePerMeal:           req.MealFeePerMeal,
		DefaultMealsPerDay:       req.DefaultMealsPerDay,
		MaintenanceFeeEnabled:    req.MaintenanceFeeEnabled,
		MaintenanceFeeTiers:      tiers,
		ApplyPrecariousnessPrime: req.ApplyPrecariousnessPrime,
	}
	if req.EndDate != nil {
		end, _ := time.Parse("2006-01-02", *req.EndDate)
		contract.EndDate = &end
	}
	return contract
}

func toGrid(rows []sqlite.GridRow) []rates.Row {
	grid := make([]rates.Row, len(rows))
	for i, r := range rows {
		grid[i] = rates.Row{
			DaysPerWeek:    r.DaysPerWeek,
			HoursPerDay:    decimal.NewFromFloat(r.HoursPerDay),
			BaseHourlyRate: decimal.NewFromFloat(r.BaseHourlyRate),
			Note:           r.Note,
		}
	}
	return grid
}

// parseMonth parses a "YYYY-MM" parameter.
func parseMonth(param string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", param)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: %w", param, err)
	}
	return t.Year(), t.Month(), nil
}

// parseMonthOrNow defaults to the current month when the parameter is
// absent.
func parseMonthOrNow(param string) (int, time.Month, error) {
	if param == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	return parseMonth(param)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func strPtr(s string) *string {
	return &s
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
