package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pairing_parser/internal/builder"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool for run history.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id               SERIAL PRIMARY KEY,
		source           TEXT NOT NULL,
		start_page       INTEGER NOT NULL,
		end_page         INTEGER NOT NULL,
		aircraft_types   TEXT NOT NULL,
		pages_parsed     INTEGER NOT NULL,
		failed_pages     INTEGER NOT NULL,
		unparsed_lines   INTEGER NOT NULL,
		dropped_pairings INTEGER NOT NULL,
		flagged_pairings INTEGER NOT NULL,
		emitted_pairings INTEGER NOT NULL,
		emitted_rows     INTEGER NOT NULL,
		summary          JSONB NOT NULL,
		started_at       TIMESTAMPTZ NOT NULL,
		finished_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at);
	`
	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// RunRecord describes one completed extraction run.
type RunRecord struct {
	Source        string
	StartPage     int
	EndPage       int
	AircraftTypes string
	Summary       builder.Summary
	StartedAt     time.Time
}

// RecordRun stores a completed run and returns its ID.
func (d *PostgresDB) RecordRun(ctx context.Context, rec RunRecord) (int64, error) {
	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return 0, fmt.Errorf("marshal summary: %w", err)
	}

	var id int64
	err = d.pool.QueryRow(ctx, `
		INSERT INTO runs (source, start_page, end_page, aircraft_types,
			pages_parsed, failed_pages, unparsed_lines, dropped_pairings,
			flagged_pairings, emitted_pairings, emitted_rows, summary, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, rec.Source, rec.StartPage, rec.EndPage, rec.AircraftTypes,
		rec.Summary.PagesParsed, rec.Summary.FailedPages, rec.Summary.UnparsedLines,
		rec.Summary.DroppedPairings, rec.Summary.FlaggedPairings,
		rec.Summary.EmittedPairings, rec.Summary.EmittedRows,
		summaryJSON, rec.StartedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// StoredRun is one row from the run history.
type StoredRun struct {
	ID         int64
	Source     string
	StartPage  int
	EndPage    int
	Summary    builder.Summary
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecentRuns returns the most recent runs, newest first.
func (d *PostgresDB) RecentRuns(ctx context.Context, limit int) ([]StoredRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.pool.Query(ctx, `
		SELECT id, source, start_page, end_page, summary, started_at, finished_at
		FROM runs ORDER BY finished_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []StoredRun
	for rows.Next() {
		var r StoredRun
		var summaryJSON []byte
		if err := rows.Scan(&r.ID, &r.Source, &r.StartPage, &r.EndPage,
			&summaryJSON, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal(summaryJSON, &r.Summary); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
