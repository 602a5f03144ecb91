// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

// ReplacingMergeTree collapses rows with the same ORDER BY key to the one
// with the highest version; reads use FINAL to see the collapsed state.
const clickhouseSchema = `
CREATE TABLE IF NOT EXISTS readings (
	device_id   String,
	ts          Int64,
	temperature Float64,
	humidity    Float64,
	received_at String,
	version     UInt64
)
ENGINE = ReplacingMergeTree(version)
ORDER BY (device_id, ts)`

type clickhouseRow struct {
	DeviceID    string  `ch:"device_id"`
	Ts          int64   `ch:"ts"`
	Temperature float64 `ch:"temperature"`
	Humidity    float64 `ch:"humidity"`
	ReceivedAt  string  `ch:"received_at"`
	Version     uint64  `ch:"version"`
}

// ClickHouseStore keeps readings in a ClickHouse table.
type ClickHouseStore struct {
	conn clickhouse.Conn
	now  func() time.Time
}

// OpenClickHouse connects to cfg.Addr and creates the readings table.
func OpenClickHouse(ctx context.Context, cfg config.ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.Addr,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	v, err := conn.ServerVersion()
	if err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("clickhouse unreachable: %w", err)
	}
	if err := conn.Exec(ctx, clickhouseSchema); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("create readings table: %w", err)
	}

	logging.Info().
		Strs("addr", cfg.Addr).
		Str("database", cfg.Database).
		Str("version", v.Version.String()).
		Msg("clickhouse store opened")

	return &ClickHouseStore{conn: conn, now: time.Now}, nil
}

// Backend implements TimeSeriesStore.
func (s *ClickHouseStore) Backend() string { return BackendClickHouse }

// Upsert implements TimeSeriesStore. The write time is the row version, so
// the latest write for a key survives merges.
func (s *ClickHouseStore) Upsert(ctx context.Context, r models.Reading) error {
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO readings")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	if err := batch.AppendStruct(&clickhouseRow{
		DeviceID:    r.DeviceID,
		Ts:          r.Timestamp,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		ReceivedAt:  r.ReceivedAt,
		Version:     uint64(s.now().UnixNano()),
	}); err != nil {
		return fmt.Errorf("append reading: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Query implements TimeSeriesStore.
func (s *ClickHouseStore) Query(ctx context.Context, deviceID string, rng *Range, limit int) ([]models.Reading, error) {
	q, args := buildSelect("readings FINAL", "?", deviceID, rng, limit)
	rows, err := s.conn.Query(ctx, q, args...)
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
func (s *ClickHouseStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close implements TimeSeriesStore.
func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}
