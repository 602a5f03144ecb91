// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"testing"

	"github.com/tomtom215/sensorhub/internal/models"
)

// runContractTests exercises the TimeSeriesStore behaviour every backend
// must share. open must return a fresh, empty store.
func runContractTests(t *testing.T, open func(t *testing.T) TimeSeriesStore) {
	t.Helper()
	ctx := context.Background()

	reading := func(id string, ts int64, temp float64) models.Reading {
		return models.Reading{
			DeviceID:    id,
			Timestamp:   ts,
			Temperature: temp,
			Humidity:    50,
			ReceivedAt:  "2026-01-01T00:00:00.000Z",
		}
	}

	mustUpsert := func(t *testing.T, s TimeSeriesStore, rs ...models.Reading) {
		t.Helper()
		for _, r := range rs {
			if err := s.Upsert(ctx, r); err != nil {
				t.Fatalf("Upsert(%s, %d) error = %v", r.DeviceID, r.Timestamp, err)
			}
		}
	}

	timestamps := func(rs []models.Reading) []int64 {
		out := make([]int64, len(rs))
		for i, r := range rs {
			out[i] = r.Timestamp
		}
		return out
	}

	equal := func(a, b []int64) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	t.Run("query empty device", func(t *testing.T) {
		s := open(t)
		got, err := s.Query(ctx, "sensor-01", nil, 0)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Query() returned %d readings, want 0", len(got))
		}
	})

	t.Run("newest first", func(t *testing.T) {
		s := open(t)
		mustUpsert(t, s,
			reading("sensor-01", 1000, 20.1),
			reading("sensor-01", 3000, 20.3),
			reading("sensor-01", 2000, 20.2),
		)

		got, err := s.Query(ctx, "sensor-01", nil, 0)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if want := []int64{3000, 2000, 1000}; !equal(timestamps(got), want) {
			t.Errorf("Query() timestamps = %v, want %v", timestamps(got), want)
		}
		if got[0].Temperature != 20.3 || got[0].DeviceID != "sensor-01" {
			t.Errorf("Query()[0] = %+v", got[0])
		}
	})

	t.Run("upsert overwrites same key", func(t *testing.T) {
		s := open(t)
		mustUpsert(t, s,
			reading("sensor-02", 1000, 18.0),
			reading("sensor-02", 1000, 19.5),
		)

		got, err := s.Query(ctx, "sensor-02", nil, 0)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Query() returned %d readings, want 1", len(got))
		}
		if got[0].Temperature != 19.5 {
			t.Errorf("Temperature = %v, want 19.5", got[0].Temperature)
		}
	})

	t.Run("inclusive range", func(t *testing.T) {
		s := open(t)
		for ts := int64(100); ts <= 500; ts += 100 {
			mustUpsert(t, s, reading("sensor-03", ts, 21))
		}

		got, err := s.Query(ctx, "sensor-03", &Range{Start: 200, End: 400}, 0)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if want := []int64{400, 300, 200}; !equal(timestamps(got), want) {
			t.Errorf("Query() timestamps = %v, want %v", timestamps(got), want)
		}
	})

	t.Run("empty range", func(t *testing.T) {
		s := open(t)
		mustUpsert(t, s, reading("sensor-03", 100, 21))

		got, err := s.Query(ctx, "sensor-03", &Range{Start: 500, End: 900}, 0)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Query() returned %d readings, want 0", len(got))
		}
	})

	t.Run("limit keeps newest", func(t *testing.T) {
		s := open(t)
		for ts := int64(1); ts <= 10; ts++ {
			mustUpsert(t, s, reading("sensor-04", ts, 22))
		}

		got, err := s.Query(ctx, "sensor-04", nil, 3)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if want := []int64{10, 9, 8}; !equal(timestamps(got), want) {
			t.Errorf("Query() timestamps = %v, want %v", timestamps(got), want)
		}
	})

	t.Run("range with limit", func(t *testing.T) {
		s := open(t)
		for ts := int64(1); ts <= 10; ts++ {
			mustUpsert(t, s, reading("sensor-04", ts, 22))
		}

		got, err := s.Query(ctx, "sensor-04", &Range{Start: 2, End: 6}, 2)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if want := []int64{6, 5}; !equal(timestamps(got), want) {
			t.Errorf("Query() timestamps = %v, want %v", timestamps(got), want)
		}
	})

	t.Run("devices are isolated", func(t *testing.T) {
		s := open(t)
		mustUpsert(t, s,
			reading("sensor-1", 100, 10),
			reading("sensor-10", 200, 11),
			reading("sensor-1", 300, 12),
		)

		got, err := s.Query(ctx, "sensor-1", nil, 0)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if want := []int64{300, 100}; !equal(timestamps(got), want) {
			t.Errorf("Query(sensor-1) timestamps = %v, want %v", timestamps(got), want)
		}
		for _, r := range got {
			if r.DeviceID != "sensor-1" {
				t.Errorf("Query(sensor-1) returned reading for %q", r.DeviceID)
			}
		}
	})

	t.Run("round trips all fields", func(t *testing.T) {
		s := open(t)
		in := models.Reading{
			DeviceID:    "sensor-02",
			Timestamp:   1767225600,
			Temperature: -4.5,
			Humidity:    99.9,
			ReceivedAt:  "2026-01-01T00:00:00.123Z",
		}
		mustUpsert(t, s, in)

		got, err := s.Query(ctx, "sensor-02", nil, 1)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 1 || got[0] != in {
			t.Errorf("Query() = %+v, want [%+v]", got, in)
		}
	})

	t.Run("ping", func(t *testing.T) {
		s := open(t)
		if err := s.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}
