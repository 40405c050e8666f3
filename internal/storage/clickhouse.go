package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"pairing_parser/internal/pairing"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection for pairing analytics.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS pairing_legs (
		source          LowCardinality(String),
		sequence        String,
		days            UInt8,
		duty_periods    UInt8,
		position        LowCardinality(String),
		start_date      LowCardinality(String),
		report_local    String,
		flight          String,
		origin          LowCardinality(String),
		departure_local String,
		departure_base  String,
		meal            LowCardinality(String),
		destination     LowCardinality(String),
		arrival_local   String,
		block           String,
		release_local   String,
		credit          String,
		duty            String,
		layover_city    LowCardinality(String),
		layover_hotel   String,
		layover_duration String,
		aircraft_type   LowCardinality(String),
		created_at      DateTime64(3) DEFAULT now64(3)
	)
	ENGINE = MergeTree()
	PARTITION BY aircraft_type
	ORDER BY (aircraft_type, sequence, start_date)
	SETTINGS index_granularity = 8192`

	if err := d.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertRows stores a batch of extracted rows from one source document.
func (d *ClickHouseDB) InsertRows(ctx context.Context, source string, rows []pairing.Row) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO pairing_legs (source, sequence, days, duty_periods, position,
			start_date, report_local, flight, origin, departure_local,
			departure_base, meal, destination, arrival_local, block,
			release_local, credit, duty, layover_city, layover_hotel,
			layover_duration, aircraft_type)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err := batch.Append(source, r.Sequence, uint8(r.Days), uint8(r.DutyPeriods),
			r.Position, r.StartDate, r.ReportLocal, r.Flight, r.Origin,
			r.DepartureLocal, r.DepartureBase, r.Meal, r.Destination,
			r.ArrivalLocal, r.Block, r.ReleaseLocal, r.Credit, r.Duty,
			r.LayoverCity, r.LayoverHotel, r.LayoverDuration, r.AircraftType)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Count returns the number of stored legs, optionally filtered by aircraft
// type.
func (d *ClickHouseDB) Count(ctx context.Context, aircraftType string) (uint64, error) {
	var count uint64
	var err error
	if aircraftType != "" {
		row := d.conn.QueryRow(ctx, "SELECT count() FROM pairing_legs WHERE aircraft_type = ?", aircraftType)
		err = row.Scan(&count)
	} else {
		row := d.conn.QueryRow(ctx, "SELECT count() FROM pairing_legs")
		err = row.Scan(&count)
	}
	return count, err
}

// CountByAircraft returns leg counts grouped by aircraft type.
func (d *ClickHouseDB) CountByAircraft(ctx context.Context) (map[string]uint64, error) {
	counts := make(map[string]uint64)
	rows, err := d.conn.Query(ctx, "SELECT aircraft_type, count() FROM pairing_legs GROUP BY aircraft_type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var typ string
		var count uint64
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("scan count by aircraft: %w", err)
		}
		counts[typ] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count by aircraft: %w", err)
	}
	return counts, nil
}
