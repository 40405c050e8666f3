// Package storage provides persistent storage for extracted pairings: a
// local SQLite archive, a ClickHouse analytics sink, and a PostgreSQL run
// history.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"pairing_parser/internal/pairing"
)

// Archive is a local SQLite archive of extracted per-leg rows, keyed by the
// source document they came from.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens or creates a SQLite archive at the given path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createArchiveSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	return a.db.Close()
}

func createArchiveSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS legs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		sequence TEXT NOT NULL,
		days INTEGER,
		duty_periods INTEGER,
		position TEXT,
		start_date TEXT,
		report_local TEXT,
		flight TEXT,
		origin TEXT,
		departure_local TEXT,
		departure_base TEXT,
		meal TEXT,
		destination TEXT,
		arrival_local TEXT,
		block TEXT,
		release_local TEXT,
		credit TEXT,
		duty TEXT,
		layover_city TEXT,
		layover_hotel TEXT,
		layover_duration TEXT,
		aircraft_type TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_legs_source ON legs(source);
	CREATE INDEX IF NOT EXISTS idx_legs_sequence ON legs(sequence);
	CREATE INDEX IF NOT EXISTS idx_legs_aircraft ON legs(aircraft_type);
	CREATE INDEX IF NOT EXISTS idx_legs_route ON legs(origin, destination);
	`
	_, err := db.Exec(schema)
	return err
}

// InsertRows archives a batch of rows extracted from one source document.
func (a *Archive) InsertRows(source string, rows []pairing.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO legs (source, sequence, days, duty_periods, position, start_date,
			report_local, flight, origin, departure_local, departure_base, meal,
			destination, arrival_local, block, release_local, credit, duty,
			layover_city, layover_hotel, layover_duration, aircraft_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		_, err := stmt.Exec(source, r.Sequence, r.Days, r.DutyPeriods, r.Position,
			r.StartDate, r.ReportLocal, r.Flight, r.Origin, r.DepartureLocal,
			r.DepartureBase, r.Meal, r.Destination, r.ArrivalLocal, r.Block,
			r.ReleaseLocal, r.Credit, r.Duty, r.LayoverCity, r.LayoverHotel,
			r.LayoverDuration, r.AircraftType)
		if err != nil {
			return fmt.Errorf("insert leg: %w", err)
		}
	}

	return tx.Commit()
}

// ArchiveQueryParams contains filtering options for querying archived legs.
type ArchiveQueryParams struct {
	Source       string // Filter by source document (exact match).
	Sequence     string // Filter by pairing sequence number (exact match).
	AircraftType string // Filter by aircraft type (exact match).
	Origin       string // Filter by leg origin (exact match).
	Destination  string // Filter by leg destination (exact match).
	Limit        int    // Max results (default 100).
}

// Query retrieves archived rows matching the given parameters.
func (a *Archive) Query(p ArchiveQueryParams) ([]pairing.Row, error) {
	var conditions []string
	var args []interface{}

	if p.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, p.Source)
	}
	if p.Sequence != "" {
		conditions = append(conditions, "sequence = ?")
		args = append(args, p.Sequence)
	}
	if p.AircraftType != "" {
		conditions = append(conditions, "aircraft_type = ?")
		args = append(args, p.AircraftType)
	}
	if p.Origin != "" {
		conditions = append(conditions, "origin = ?")
		args = append(args, p.Origin)
	}
	if p.Destination != "" {
		conditions = append(conditions, "destination = ?")
		args = append(args, p.Destination)
	}

	query := `SELECT sequence, days, duty_periods, position, start_date,
		report_local, flight, origin, departure_local, departure_base, meal,
		destination, arrival_local, block, release_local, credit, duty,
		layover_city, layover_hotel, layover_duration, aircraft_type FROM legs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	limit := 100
	if p.Limit > 0 {
		limit = p.Limit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query legs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []pairing.Row
	for rows.Next() {
		var r pairing.Row
		err := rows.Scan(&r.Sequence, &r.Days, &r.DutyPeriods, &r.Position,
			&r.StartDate, &r.ReportLocal, &r.Flight, &r.Origin, &r.DepartureLocal,
			&r.DepartureBase, &r.Meal, &r.Destination, &r.ArrivalLocal, &r.Block,
			&r.ReleaseLocal, &r.Credit, &r.Duty, &r.LayoverCity, &r.LayoverHotel,
			&r.LayoverDuration, &r.AircraftType)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ArchiveStats contains aggregate statistics about archived legs.
type ArchiveStats struct {
	TotalLegs      int
	ByAircraftType map[string]int
	BySource       map[string]int
}

// GetStats returns statistics about the archived legs.
func (a *Archive) GetStats() (*ArchiveStats, error) {
	stats := &ArchiveStats{
		ByAircraftType: make(map[string]int),
		BySource:       make(map[string]int),
	}

	row := a.db.QueryRow("SELECT COUNT(*) FROM legs")
	if err := row.Scan(&stats.TotalLegs); err != nil {
		return nil, err
	}

	rows, err := a.db.Query("SELECT aircraft_type, COUNT(*) FROM legs GROUP BY aircraft_type")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		stats.ByAircraftType[typ] = count
	}
	_ = rows.Close()

	rows, err = a.db.Query("SELECT source, COUNT(*) FROM legs GROUP BY source ORDER BY COUNT(*) DESC LIMIT 20")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var src string
		var count int
		if err := rows.Scan(&src, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		stats.BySource[src] = count
	}
	_ = rows.Close()

	return stats, nil
}
