/*
Package sqlite provides the SQLite-backed persistence for contracts, time
entries and settings.

PURPOSE:
  The calculation engine is pure; this package is the storage collaborator
  that feeds it. It persists the contract parameters, the daily time
  entries (unique per contract and date), and the singleton settings row
  (net coefficient + reference grid).

KEY TABLES:
  contracts:    One row per employment contract. Nested config
                (planned absences, maintenance tiers) is stored as JSON
                blobs, like any other structured config column.
  time_entries: One row per (contract, date). Upserts by date.
  settings:     Singleton row, created on first access.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  and crash recovery is cheap.

USAGE:
  store, err := sqlite.New("./data/assmat.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - api: Builds engine input from these records
  - rates: Supplies the default reference grid seeded into settings
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/assmat/paie-engine/rates"
)

const dateLayout = "2006-01-02"

// Store implements all persistence for the service.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Contracts
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		child_name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		contract_type TEXT NOT NULL,
		hours_per_day REAL NOT NULL,
		days_per_week INTEGER NOT NULL,
		weeks_per_year INTEGER NOT NULL,
		planned_absences_json TEXT NOT NULL DEFAULT '[]',
		base_hourly_rate REAL NOT NULL,
		allow_override BOOLEAN NOT NULL DEFAULT FALSE,
		override_hourly_rate REAL,
		bill_complementary_hours BOOLEAN NOT NULL DEFAULT TRUE,
		overtime_rate_percent INTEGER NOT NULL DEFAULT 10,
		meal_fee_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		meal_fee_per_meal REAL NOT NULL DEFAULT 0,
		default_meals_per_day INTEGER NOT NULL DEFAULT 0,
		maintenance_fee_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		maintenance_tiers_json TEXT NOT NULL DEFAULT '[]',
		apply_precariousness_prime BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_created_at
		ON contracts(created_at DESC);

	-- Time entries (one per contract and day)
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		start_time TEXT,
		end_time TEXT,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		meals_count INTEGER NOT NULL DEFAULT 0,
		is_planned_absence BOOLEAN NOT NULL DEFAULT FALSE,
		is_unplanned_absence BOOLEAN NOT NULL DEFAULT FALSE,
		is_holiday BOOLEAN NOT NULL DEFAULT FALSE,
		is_unavailable BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: one entry per contract per calendar day
	CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_contract_date
		ON time_entries(contract_id, date);

	-- Month and padded-week range queries (hot path for summaries)
	CREATE INDEX IF NOT EXISTS idx_entries_contract_date_range
		ON time_entries(contract_id, date ASC);

	-- Settings (singleton row)
	CREATE TABLE IF NOT EXISTS settings (
		id TEXT PRIMARY KEY,
		net_coefficient REAL NOT NULL,
		reference_grid_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD TYPES
// =============================================================================

// PlannedAbsence is a stored absence interval (ISO dates, start <= end).
type PlannedAbsence struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// MaintenanceTier is a stored maintenance fee bracket.
type MaintenanceTier struct {
	MinHours float64 `json:"minHours"`
	MaxHours float64 `json:"maxHours"`
	Fee      float64 `json:"fee"`
}

// Contract is a stored employment contract.
type Contract struct {
	ID                       string
	ChildName                string
	StartDate                time.Time
	EndDate                  *time.Time
	ContractType             string // "CDI" or "CDD"
	HoursPerDay              float64
	DaysPerWeek              int
	WeeksPerYear             int
	PlannedAbsences          []PlannedAbsence
	BaseHourlyRate           float64
	AllowOverride            bool
	OverrideHourlyRate       *float64
	BillComplementaryHours   bool
	OvertimeRatePercent      int
	MealFeeEnabled           bool
	MealFeePerMeal           float64
	DefaultMealsPerDay       int
	MaintenanceFeeEnabled    bool
	MaintenanceFeeTiers      []MaintenanceTier
	ApplyPrecariousnessPrime bool
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// EffectiveHourlyRate resolves the rate actually paid: the override when
// allowed and set, otherwise the base rate.
func (c Contract) EffectiveHourlyRate() float64 {
	if c.AllowOverride && c.OverrideHourlyRate != nil {
		return *c.OverrideHourlyRate
	}
	return c.BaseHourlyRate
}

// TimeEntry is a stored daily entry. StartTime/EndTime are "HH:MM" clock
// strings, empty when no times were recorded.
type TimeEntry struct {
	ID                 string
	ContractID         string
	Date               time.Time
	StartTime          string
	EndTime            string
	DurationMinutes    int
	MealsCount         int
	IsPlannedAbsence   bool
	IsUnplannedAbsence bool
	IsHoliday          bool
	IsUnavailable      bool
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// GridRow is a stored reference grid line.
type GridRow struct {
	DaysPerWeek    int     `json:"daysPerWeek"`
	HoursPerDay    float64 `json:"hoursPerDay"`
	BaseHourlyRate float64 `json:"baseHourlyRate"`
	Note           string  `json:"note,omitempty"`
}

// Settings is the singleton configuration row.
type Settings struct {
	NetCoefficient float64
	ReferenceGrid  []GridRow
	UpdatedAt      time.Time
}

// =============================================================================
// CONTRACT STORE
// =============================================================================

// SaveContract inserts or replaces a contract.
func (s *Store) SaveContract(ctx context.Context, c Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	absencesJSON, err := json.Marshal(c.PlannedAbsences)
	if err != nil {
		return fmt.Errorf("failed to encode planned absences: %w", err)
	}
	tiersJSON, err := json.Marshal(c.MaintenanceFeeTiers)
	if err != nil {
		return fmt.Errorf("failed to encode maintenance tiers: %w", err)
	}

	query := `
		INSERT INTO contracts
		(id, child_name, start_date, end_date, contract_type, hours_per_day,
		 days_per_week, weeks_per_year, planned_absences_json, base_hourly_rate,
		 allow_override, override_hourly_rate, bill_complementary_hours,
		 overtime_rate_percent, meal_fee_enabled, meal_fee_per_meal,
		 default_meals_per_day, maintenance_fee_enabled, maintenance_tiers_json,
		 apply_precariousness_prime, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			child_name = excluded.child_name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			contract_type = excluded.contract_type,
			hours_per_day = excluded.hours_per_day,
			days_per_week = excluded.days_per_week,
			weeks_per_year = excluded.weeks_per_year,
			planned_absences_json = excluded.planned_absences_json,
			base_hourly_rate = excluded.base_hourly_rate,
			allow_override = excluded.allow_override,
			override_hourly_rate = excluded.override_hourly_rate,
			bill_complementary_hours = excluded.bill_complementary_hours,
			overtime_rate_percent = excluded.overtime_rate_percent,
			meal_fee_enabled = excluded.meal_fee_enabled,
			meal_fee_per_meal = excluded.meal_fee_per_meal,
			default_meals_per_day = excluded.default_meals_per_day,
			maintenance_fee_enabled = excluded.maintenance_fee_enabled,
			maintenance_tiers_json = excluded.maintenance_tiers_json,
			apply_precariousness_prime = excluded.apply_precariousness_prime,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	createdAt := now
	if !c.CreatedAt.IsZero() {
		createdAt = c.CreatedAt.UTC().Format(time.RFC3339)
	}

	_, err = s.db.ExecContext(ctx, query,
		c.ID, c.ChildName,
		c.StartDate.Format(dateLayout),
		nullDate(c.EndDate),
		c.ContractType, c.HoursPerDay, c.DaysPerWeek, c.WeeksPerYear,
		string(absencesJSON), c.BaseHourlyRate,
		c.AllowOverride, nullFloat(c.OverrideHourlyRate),
		c.BillComplementaryHours, c.OvertimeRatePercent,
		c.MealFeeEnabled, c.MealFeePerMeal, c.DefaultMealsPerDay,
		c.MaintenanceFeeEnabled, string(tiersJSON),
		c.ApplyPrecariousnessPrime,
		createdAt, now,
	)
	return err
}

// GetContract returns a contract, or nil when it doesn't exist.
func (s *Store) GetContract(ctx context.Context, id string) (*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contracts, err := s.queryContracts(ctx, contractColumns+" FROM contracts WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return nil, nil
	}
	return &contracts[0], nil
}

// ListContracts returns all contracts, newest first.
func (s *Store) ListContracts(ctx context.Context) ([]Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryContracts(ctx, contractColumns+" FROM contracts ORDER BY created_at DESC")
}

// DeleteContract removes a contract and, via cascade, its entries.
func (s *Store) DeleteContract(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM contracts WHERE id = ?", id)
	return err
}

const contractColumns = `SELECT id, child_name, start_date, end_date, contract_type,
	hours_per_day, days_per_week, weeks_per_year, planned_absences_json,
	base_hourly_rate, allow_override, override_hourly_rate,
	bill_complementary_hours, overtime_rate_percent, meal_fee_enabled,
	meal_fee_per_meal, default_meals_per_day, maintenance_fee_enabled,
	maintenance_tiers_json, apply_precariousness_prime, created_at, updated_at`

func (s *Store) queryContracts(ctx context.Context, query string, args ...any) ([]Contract, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		var c Contract
		var startDate, createdAt, updatedAt, absencesJSON, tiersJSON string
		var endDate sql.NullString
		var override sql.NullFloat64

		err := rows.Scan(
			&c.ID, &c.ChildName, &startDate, &endDate, &c.ContractType,
			&c.HoursPerDay, &c.DaysPerWeek, &c.WeeksPerYear, &absencesJSON,
			&c.BaseHourlyRate, &c.AllowOverride, &override,
			&c.BillComplementaryHours, &c.OvertimeRatePercent, &c.MealFeeEnabled,
			&c.MealFeePerMeal, &c.DefaultMealsPerDay, &c.MaintenanceFeeEnabled,
			&tiersJSON, &c.ApplyPrecariousnessPrime, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, err
		}

		c.StartDate, _ = time.Parse(dateLayout, startDate)
		if endDate.Valid {
			t, _ := time.Parse(dateLayout, endDate.String)
			c.EndDate = &t
		}
		if override.Valid {
			v := override.Float64
			c.OverrideHourlyRate = &v
		}
		if err := json.Unmarshal([]byte(absencesJSON), &c.PlannedAbsences); err != nil {
			return nil, fmt.Errorf("corrupt planned_absences_json for contract %s: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(tiersJSON), &c.MaintenanceFeeTiers); err != nil {
			return nil, fmt.Errorf("corrupt maintenance_tiers_json for contract %s: %w", c.ID, err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// =============================================================================
// TIME ENTRY STORE
// =============================================================================

// UpsertEntry inserts an entry, or updates the existing one for the same
// contract and date. Returns the stored entry (the id is preserved on
// update).
func (s *Store) UpsertEntry(ctx context.Context, e TimeEntry) (*TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO time_entries
		(id, contract_id, date, start_time, end_time, duration_minutes,
		 meals_count, is_planned_absence, is_unplanned_absence, is_holiday,
		 is_unavailable, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(contract_id, date) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			duration_minutes = excluded.duration_minutes,
			meals_count = excluded.meals_count,
			is_planned_absence = excluded.is_planned_absence,
			is_unplanned_absence = excluded.is_unplanned_absence,
			is_holiday = excluded.is_holiday,
			is_unavailable = excluded.is_unavailable,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.ContractID, e.Date.Format(dateLayout),
		nullString(e.StartTime), nullString(e.EndTime),
		e.DurationMinutes, e.MealsCount,
		e.IsPlannedAbsence, e.IsUnplannedAbsence, e.IsHoliday, e.IsUnavailable,
		nullString(e.Notes), now, now,
	)
	if err != nil {
		return nil, err
	}

	return s.getEntryByDate(ctx, e.ContractID, e.Date)
}

// UpdateEntry updates an existing entry by id.
func (s *Store) UpdateEntry(ctx context.Context, e TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE time_entries SET
			date = ?, start_time = ?, end_time = ?, duration_minutes = ?,
			meals_count = ?, is_planned_absence = ?, is_unplanned_absence = ?,
			is_holiday = ?, is_unavailable = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		e.Date.Format(dateLayout),
		nullString(e.StartTime), nullString(e.EndTime),
		e.DurationMinutes, e.MealsCount,
		e.IsPlannedAbsence, e.IsUnplannedAbsence, e.IsHoliday, e.IsUnavailable,
		nullString(e.Notes), time.Now().UTC().Format(time.RFC3339),
		e.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetEntry returns an entry by id, or nil when it doesn't exist.
func (s *Store) GetEntry(ctx context.Context, id string) (*TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.queryEntries(ctx, entryColumns+" FROM time_entries WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) getEntryByDate(ctx context.Context, contractID string, date time.Time) (*TimeEntry, error) {
	entries, err := s.queryEntries(ctx,
		entryColumns+" FROM time_entries WHERE contract_id = ? AND date = ?",
		contractID, date.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// DeleteEntry removes an entry by id.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	return err
}

// ListEntries returns a contract's entries ordered by date ascending,
// optionally restricted to an inclusive [from, to] date range.
func (s *Store) ListEntries(ctx context.Context, contractID string, from, to *time.Time) ([]TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := entryColumns + " FROM time_entries WHERE contract_id = ?"
	args := []any{contractID}
	if from != nil {
		query += " AND date >= ?"
		args = append(args, from.Format(dateLayout))
	}
	if to != nil {
		query += " AND date <= ?"
		args = append(args, to.Format(dateLayout))
	}
	query += " ORDER BY date ASC"

	return s.queryEntries(ctx, query, args...)
}

const entryColumns = `SELECT id, contract_id, date, start_time, end_time,
	duration_minutes, meals_count, is_planned_absence, is_unplanned_absence,
	is_holiday, is_unavailable, notes, created_at, updated_at`

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TimeEntry
	for rows.Next() {
		var e TimeEntry
		var date, createdAt, updatedAt string
		var startTime, endTime, notes sql.NullString

		err := rows.Scan(
			&e.ID, &e.ContractID, &date, &startTime, &endTime,
			&e.DurationMinutes, &e.MealsCount,
			&e.IsPlannedAbsence, &e.IsUnplannedAbsence, &e.IsHoliday,
			&e.IsUnavailable, &notes, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, err
		}

		e.Date, _ = time.Parse(dateLayout, date)
		e.StartTime = startTime.String
		e.EndTime = endTime.String
		e.Notes = notes.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

const settingsID = "singleton"

// GetOrCreateSettings returns the settings row, seeding it with the
// default net coefficient and reference grid on first access.
func (s *Store) GetOrCreateSettings(ctx context.Context) (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	seed := Settings{
		NetCoefficient: 0.7812,
		ReferenceGrid:  defaultGridRows(),
	}
	if err := s.saveSettings(ctx, seed); err != nil {
		return nil, err
	}
	return s.loadSettings(ctx)
}

// SaveSettings writes the settings row.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveSettings(ctx, settings)
}

func (s *Store) saveSettings(ctx context.Context, settings Settings) error {
	gridJSON, err := json.Marshal(settings.ReferenceGrid)
	if err != nil {
		return fmt.Errorf("failed to encode reference grid: %w", err)
	}

	query := `
		INSERT INTO settings (id, net_coefficient, reference_grid_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			net_coefficient = excluded.net_coefficient,
			reference_grid_json = excluded.reference_grid_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		settingsID, settings.NetCoefficient, string(gridJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) loadSettings(ctx context.Context) (*Settings, error) {
	var settings Settings
	var gridJSON, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT net_coefficient, reference_grid_json, updated_at FROM settings WHERE id = ?",
		settingsID,
	).Scan(&settings.NetCoefficient, &gridJSON, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(gridJSON), &settings.ReferenceGrid); err != nil {
		return nil, fmt.Errorf("corrupt reference_grid_json: %w", err)
	}
	settings.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &settings, nil
}

func defaultGridRows() []GridRow {
	grid := rates.DefaultGrid()
	rows := make([]GridRow, len(grid))
	for i, r := range grid {
		rows[i] = GridRow{
			DaysPerWeek:    r.DaysPerWeek,
			HoursPerDay:    r.HoursPerDay.InexactFloat64(),
			BaseHourlyRate: r.BaseHourlyRate.InexactFloat64(),
			Note:           r.Note,
		}
	}
	return rows
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// IsUniqueConstraintError reports a uniqueness violation (duplicate
// contract id, or a second entry on the same day).
func IsUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
