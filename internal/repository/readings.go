// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package repository

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/sensorhub/internal/models"
	"github.com/tomtom215/sensorhub/internal/store"
)

const (
	// DefaultLimit applies when RangeForDevice is called with limit <= 0.
	DefaultLimit = 1000

	// MaxLimit is the largest page RangeForDevice will return.
	MaxLimit = 10000
)

// DeviceLister enumerates the known devices.
type DeviceLister interface {
	IDs() []string
}

// ReadingRepository exposes the domain queries over a TimeSeriesStore.
type ReadingRepository struct {
	store   store.TimeSeriesStore
	devices DeviceLister
}

// New returns a repository over ts for the devices in devices.
func New(ts store.TimeSeriesStore, devices DeviceLister) *ReadingRepository {
	return &ReadingRepository{store: ts, devices: devices}
}

// Save upserts r. Saving the same (DeviceID, Timestamp) twice keeps the later values.
func (r *ReadingRepository) Save(ctx context.Context, reading models.Reading) error {
	if err := r.store.Upsert(ctx, reading); err != nil {
		return unavailable(fmt.Sprintf("save %s@%d", reading.DeviceID, reading.Timestamp), err)
	}
	return nil
}

// LatestPerDevice returns the newest reading of every known device.
// The per-device queries run concurrently; devices with no readings are
// absent from the result.
func (r *ReadingRepository) LatestPerDevice(ctx context.Context) (map[string]models.Reading, error) {
	ids := r.devices.IDs()
	latest := make([]*models.Reading, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			rows, err := r.store.Query(gctx, id, nil, 1)
			if err != nil {
				return unavailable("latest "+id, err)
			}
			if len(rows) > 0 {
				latest[i] = &rows[0]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]models.Reading, len(ids))
	for i, id := range ids {
		if latest[i] != nil {
			out[id] = *latest[i]
		}
	}
	return out, nil
}

// RangeForDevice returns readings of deviceID, newest first.
//
// The inclusive [start, end] filter applies only when both bounds are
// given; a single bound is ignored. limit <= 0 means DefaultLimit and values
// above MaxLimit are clamped.
func (r *ReadingRepository) RangeForDevice(ctx context.Context, deviceID string, start, end *int64, limit int) ([]models.Reading, error) {
	var rng *store.Range
	if start != nil && end != nil {
		rng = &store.Range{Start: *start, End: *end}
	}

	rows, err := r.store.Query(ctx, deviceID, rng, ClampLimit(limit))
	if err != nil {
		return nil, unavailable("range "+deviceID, err)
	}
	if rows == nil {
		rows = []models.Reading{}
	}
	return rows, nil
}

// Ping reports whether the underlying store is reachable.
func (r *ReadingRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Backend names the underlying store.
func (r *ReadingRepository) Backend() string {
	return r.store.Backend()
}

// ClampLimit applies DefaultLimit and MaxLimit to a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func unavailable(op string, err error) error {
	if errors.Is(err, store.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, store.ErrStoreUnavailable, err)
}
