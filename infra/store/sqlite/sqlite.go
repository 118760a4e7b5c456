// Package sqlite implements the planning stores on a SQLite database. The
// schema mirrors the tables of the planning calendar: orders, workforce,
// settings, plan events and AutoPlan run history.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the database handle. It implements the engine's
// OrderSource, Workforce and PlanningStore contracts plus the CRUD
// surface of the HTTP API.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id TEXT PRIMARY KEY,
    customer TEXT,
    status TEXT,
    delivery_date TEXT,
    distance_km REAL NOT NULL DEFAULT 0,
    total_prod_min INTEGER NOT NULL DEFAULT 0,
    total_mont_min INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS employees (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    role TEXT NOT NULL,
    weekly_hours REAL NOT NULL DEFAULT 0,
    days_mask INTEGER NOT NULL DEFAULT 0,
    active INTEGER NOT NULL DEFAULT 1,
    color TEXT
);
CREATE TABLE IF NOT EXISTS blockers (
    id TEXT PRIMARY KEY,
    employee_id TEXT NOT NULL,
    date_iso TEXT NOT NULL,
    overnight INTEGER NOT NULL DEFAULT 0,
    reason TEXT
);
CREATE TABLE IF NOT EXISTS items (
    sku TEXT PRIMARY KEY,
    name TEXT,
    prod_min_per_unit INTEGER NOT NULL DEFAULT 0,
    mont_min_per_unit INTEGER NOT NULL DEFAULT 0,
    active INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS app_settings (
    key TEXT PRIMARY KEY,
    value_json TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS plan_events (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    order_id TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    total_minutes INTEGER NOT NULL DEFAULT 0,
    travel_minutes INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT 'manual'
);
CREATE TABLE IF NOT EXISTS plan_event_employees (
    event_id TEXT NOT NULL,
    employee_id TEXT NOT NULL,
    PRIMARY KEY (event_id, employee_id)
);
CREATE TABLE IF NOT EXISTS autoplan_runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    params_json TEXT NOT NULL,
    summary_json TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS autoplan_issues (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    type TEXT NOT NULL,
    order_id TEXT,
    date_iso TEXT,
    deficit_min INTEGER,
    details_json TEXT
);
CREATE INDEX IF NOT EXISTS idx_plan_events_kind_dates ON plan_events (kind, start_date, end_date);
CREATE INDEX IF NOT EXISTS idx_blockers_date ON blockers (date_iso);
CREATE INDEX IF NOT EXISTS idx_autoplan_issues_run ON autoplan_issues (run_id);
`

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// The modernc driver serializes writes; a single connection avoids
	// SQLITE_BUSY on concurrent API calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
