/*
Package sqlite provides the SQLite-backed trip and employee store.

PURPOSE:
  Persistence for the reference backend: the employee roster and the
  trip records the compliance engine consumes. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:  Roster records
  trips:      Trip records, dates stored as yyyy-mm-dd text

MUTATION MODEL:
  Trips are replaced wholesale on update (single UPDATE touching every
  editable column); there is no field-level patching. Duplicate copies
  a whole row under a new id.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block, single writer at a time,
  better crash recovery.

USAGE:
  store, err := sqlite.New("./data/trips.db")   // ":memory:" for tests
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - api/handlers.go: the HTTP surface over this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a trip or employee id does not exist.
var ErrNotFound = errors.New("record not found")

// EmployeeRecord is a roster row.
type EmployeeRecord struct {
	ID     string
	Name   string
	Active bool
}

// TripRecord is a trip row. Dates are yyyy-mm-dd strings, validated by
// trip.Normalize on the way out, not here; the store is dumb on
// purpose.
type TripRecord struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Country      string
	EntryDate    string
	ExitDate     string
	JobRef       string
	Purpose      string
	Ghosted      bool
}

// Store is the SQLite-backed implementation.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
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

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		employee_name TEXT,
		country TEXT,
		entry_date TEXT NOT NULL,
		exit_date TEXT NOT NULL,
		job_ref TEXT,
		purpose TEXT,
		ghosted INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_trips_employee ON trips(employee_id, entry_date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or replaces a roster row.
func (s *Store) SaveEmployee(ctx context.Context, e EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO employees (id, name, active) VALUES (?, ?, ?)`,
		e.ID, e.Name, boolToInt(e.Active))
	return err
}

// ListEmployees returns the roster ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, active FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeRecord
	for rows.Next() {
		var e EmployeeRecord
		var active int
		if err := rows.Scan(&e.ID, &e.Name, &active); err != nil {
			return nil, err
		}
		e.Active = active != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// TRIPS
// =============================================================================

// SaveTrip inserts a new trip row.
func (s *Store) SaveTrip(ctx context.Context, t TripRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trips (id, employee_id, employee_name, country, entry_date, exit_date, job_ref, purpose, ghosted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.EmployeeID, t.EmployeeName, t.Country, t.EntryDate, t.ExitDate,
		t.JobRef, t.Purpose, boolToInt(t.Ghosted))
	return err
}

// UpdateTrip replaces every editable column of an existing trip.
func (s *Store) UpdateTrip(ctx context.Context, t TripRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE trips SET employee_id = ?, employee_name = ?, country = ?,
			entry_date = ?, exit_date = ?, job_ref = ?, purpose = ?, ghosted = ?
		WHERE id = ?`,
		t.EmployeeID, t.EmployeeName, t.Country, t.EntryDate, t.ExitDate,
		t.JobRef, t.Purpose, boolToInt(t.Ghosted), t.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetTrip returns one trip row.
func (s *Store) GetTrip(ctx context.Context, id string) (*TripRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, employee_name, country, entry_date, exit_date, job_ref, purpose, ghosted
		FROM trips WHERE id = ?`, id)

	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTrips returns every trip ordered by entry date.
func (s *Store) ListTrips(ctx context.Context) ([]TripRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTrips(ctx, `
		SELECT id, employee_id, employee_name, country, entry_date, exit_date, job_ref, purpose, ghosted
		FROM trips ORDER BY entry_date, id`)
}

// ListTripsByEmployee returns one employee's trips ordered by entry
// date.
func (s *Store) ListTripsByEmployee(ctx context.Context, employeeID string) ([]TripRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTrips(ctx, `
		SELECT id, employee_id, employee_name, country, entry_date, exit_date, job_ref, purpose, ghosted
		FROM trips WHERE employee_id = ? ORDER BY entry_date, id`, employeeID)
}

// DeleteTrip removes a trip.
func (s *Store) DeleteTrip(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DuplicateTrip copies a trip row under a new id and returns the copy.
func (s *Store) DuplicateTrip(ctx context.Context, id, newID string) (*TripRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trips (id, employee_id, employee_name, country, entry_date, exit_date, job_ref, purpose, ghosted)
		SELECT ?, employee_id, employee_name, country, entry_date, exit_date, job_ref, purpose, ghosted
		FROM trips WHERE id = ?`, newID, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, employee_name, country, entry_date, exit_date, job_ref, purpose, ghosted
		FROM trips WHERE id = ?`, newID)
	t, err := scanTrip(row)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Reset drops all data, used by tests and demo reloads.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM trips`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM employees`)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) queryTrips(ctx context.Context, query string, args ...any) ([]TripRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TripRecord
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (TripRecord, error) {
	var t TripRecord
	var ghosted int
	var employeeName, country, jobRef, purpose sql.NullString
	err := row.Scan(&t.ID, &t.EmployeeID, &employeeName, &country,
		&t.EntryDate, &t.ExitDate, &jobRef, &purpose, &ghosted)
	if err != nil {
		return TripRecord{}, err
	}
	t.EmployeeName = employeeName.String
	t.Country = country.String
	t.JobRef = jobRef.String
	t.Purpose = purpose.String
	t.Ghosted = ghosted != 0
	return t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
