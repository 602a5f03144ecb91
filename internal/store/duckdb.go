// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" database/sql driver

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

const duckdbSchema = `
CREATE TABLE IF NOT EXISTS readings (
	device_id   VARCHAR NOT NULL,
	ts          BIGINT  NOT NULL,
	temperature DOUBLE  NOT NULL,
	humidity    DOUBLE  NOT NULL,
	received_at VARCHAR NOT NULL,
	PRIMARY KEY (device_id, ts)
)`

const duckdbUpsert = `
INSERT INTO readings (device_id, ts, temperature, humidity, received_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (device_id, ts) DO UPDATE SET
	temperature = excluded.temperature,
	humidity    = excluded.humidity,
	received_at = excluded.received_at`

// DuckDBStore keeps readings in an embedded DuckDB database.
type DuckDBStore struct {
	conn *sql.DB
}

// OpenDuckDB opens the database at cfg.Path and creates the readings table.
// A path of ":memory:" opens a private in-memory database.
func OpenDuckDB(ctx context.Context, cfg config.DuckDBConfig) (*DuckDBStore, error) {
	params := []string{"autoinstall_known_extensions=false", "autoload_known_extensions=false"}
	if cfg.Path != ":memory:" {
		params = append(params, "access_mode=read_write")
	}
	if cfg.MaxMemory != "" {
		params = append(params, "max_memory="+cfg.MaxMemory)
	}
	if cfg.Threads > 0 {
		params = append(params, fmt.Sprintf("threads=%d", cfg.Threads))
	}
	connStr := cfg.Path + "?" + strings.Join(params, "&")

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes writers, so same-key upserts never race
	// into a transaction conflict. An in-memory database also lives only
	// as long as that connection.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if _, err := conn.ExecContext(ctx, duckdbSchema); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to create readings table: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("duckdb store opened")
	return &DuckDBStore{conn: conn}, nil
}

// Backend implements TimeSeriesStore.
func (s *DuckDBStore) Backend() string { return BackendDuckDB }

// Upsert implements TimeSeriesStore.
func (s *DuckDBStore) Upsert(ctx context.Context, r models.Reading) error {
	_, err := s.conn.ExecContext(ctx, duckdbUpsert,
		r.DeviceID, r.Timestamp, r.Temperature, r.Humidity, r.ReceivedAt)
	if err != nil {
		return fmt.Errorf("upsert reading: %w", err)
	}
	return nil
}

// Query implements TimeSeriesStore.
func (s *DuckDBStore) Query(ctx context.Context, deviceID string, rng *Range, limit int) ([]models.Reading, error) {
	q, args := buildSelect("readings", "?", deviceID, rng, limit)
	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer closeQuietly(rows)

	var out []models.Reading
	for rows.Next() {
		var r models.Reading
		if err := rows.Scan(&r.DeviceID, &r.Timestamp, &r.Temperature, &r.Humidity, &r.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return out, nil
}

// Ping implements TimeSeriesStore.
func (s *DuckDBStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close implements TimeSeriesStore.
func (s *DuckDBStore) Close() error {
	return s.conn.Close()
}

// buildSelect renders the range query shared by the SQL backends.
// placeholder is "?" for DuckDB and ClickHouse, "$" for PostgreSQL ($1, $2, ...).
func buildSelect(from, placeholder, deviceID string, rng *Range, limit int) (string, []interface{}) {
	args := []interface{}{deviceID}
	ph := func() string {
		if placeholder == "$" {
			return fmt.Sprintf("$%d", len(args))
		}
		return "?"
	}

	var b strings.Builder
	b.WriteString("SELECT device_id, ts, temperature, humidity, received_at FROM ")
	b.WriteString(from)
	b.WriteString(" WHERE device_id = ")
	b.WriteString(ph())
	if rng != nil {
		args = append(args, rng.Start)
		b.WriteString(" AND ts >= " + ph())
		args = append(args, rng.End)
		b.WriteString(" AND ts <= " + ph())
	}
	b.WriteString(" ORDER BY ts DESC")
	if limit > 0 {
		args = append(args, limit)
		b.WriteString(" LIMIT " + ph())
	}
	return b.String(), args
}

// closeQuietly closes a resource and ignores any error.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
