// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

const (
	influxMeasurement = "readings"

	// influxMaxStop bounds unfiltered queries (2100-01-01T00:00:00Z).
	influxMaxStop int64 = 4102444800
)

// InfluxStore keeps readings in an InfluxDB 2.x bucket.
//
// Each reading is a point in measurement "readings" tagged with device_id
// at time.Unix(timestamp, 0). Writing the same series and time again
// replaces the field values, which gives upsert semantics for free.
type InfluxStore struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	query  api.QueryAPI
	bucket string
}

// OpenInflux connects to cfg.URL and checks server health.
func OpenInflux(ctx context.Context, cfg config.InfluxDBConfig) (*InfluxStore, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	s := &InfluxStore{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		query:  client.QueryAPI(cfg.Org),
		bucket: cfg.Bucket,
	}
	if err := s.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}

	logging.Info().Str("url", cfg.URL).Str("org", cfg.Org).Str("bucket", cfg.Bucket).Msg("influxdb store opened")
	return s, nil
}

// Backend implements TimeSeriesStore.
func (s *InfluxStore) Backend() string { return BackendInfluxDB }

// Upsert implements TimeSeriesStore.
func (s *InfluxStore) Upsert(ctx context.Context, r models.Reading) error {
	point := influxdb2.NewPoint(
		influxMeasurement,
		map[string]string{"device_id": r.DeviceID},
		map[string]interface{}{
			"temperature": r.Temperature,
			"humidity":    r.Humidity,
			"received_at": r.ReceivedAt,
		},
		time.Unix(r.Timestamp, 0),
	)
	if err := s.write.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("write point: %w", err)
	}
	return nil
}

// fluxQuery renders the Flux query for one device. Range stop is exclusive
// in Flux, so the inclusive end becomes end+1.
func (s *InfluxStore) fluxQuery(deviceID string, rng *Range, limit int) string {
	start, stop := int64(0), influxMaxStop
	if rng != nil {
		start, stop = rng.Start, rng.End+1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", strconv.Quote(s.bucket))
	fmt.Fprintf(&b, "\t|> range(start: %d, stop: %d)\n", start, stop)
	fmt.Fprintf(&b, "\t|> filter(fn: (r) => r._measurement == %s and r.device_id == %s)\n",
		strconv.Quote(influxMeasurement), strconv.Quote(deviceID))
	b.WriteString("\t|> pivot(rowKey: [\"_time\"], columnKey: [\"_field\"], valueColumn: \"_value\")\n")
	b.WriteString("\t|> group()\n")
	b.WriteString("\t|> sort(columns: [\"_time\"], desc: true)\n")
	if limit > 0 {
		fmt.Fprintf(&b, "\t|> limit(n: %d)\n", limit)
	}
	return b.String()
}

// Query implements TimeSeriesStore.
func (s *InfluxStore) Query(ctx context.Context, deviceID string, rng *Range, limit int) ([]models.Reading, error) {
	if rng != nil && rng.End < rng.Start {
		return nil, nil
	}

	result, err := s.query.Query(ctx, s.fluxQuery(deviceID, rng, limit))
	if err != nil {
		return nil, fmt.Errorf("flux query: %w", err)
	}
	defer closeQuietly(result)

	var out []models.Reading
	for result.Next() {
		rec := result.Record()
		r := models.Reading{DeviceID: deviceID, Timestamp: rec.Time().Unix()}
		if v, ok := rec.ValueByKey("temperature").(float64); ok {
			r.Temperature = v
		}
		if v, ok := rec.ValueByKey("humidity").(float64); ok {
			r.Humidity = v
		}
		if v, ok := rec.ValueByKey("received_at").(string); ok {
			r.ReceivedAt = v
		}
		out = append(out, r)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("flux result: %w", err)
	}
	return out, nil
}

// Ping implements TimeSeriesStore.
func (s *InfluxStore) Ping(ctx context.Context) error {
	health, err := s.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influxdb unreachable: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("influxdb health check failed: %s", msg)
	}
	return nil
}

// Close implements TimeSeriesStore.
func (s *InfluxStore) Close() error {
	s.client.Close()
	return nil
}
