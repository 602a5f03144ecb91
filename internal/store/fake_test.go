// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package store

import (
	"context"
	"sync"

	"github.com/tomtom215/sensorhub/internal/models"
)

// fakeStore returns err from every call and records how often it was reached.
type fakeStore struct {
	mu       sync.Mutex
	name     string
	err      error
	calls    int
	readings []models.Reading
	deadline bool
	closed   bool
}

func (f *fakeStore) record(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if ctx != nil {
		_, f.deadline = ctx.Deadline()
	}
	return f.err
}

func (f *fakeStore) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) Upsert(ctx context.Context, _ models.Reading) error {
	return f.record(ctx)
}

func (f *fakeStore) Query(ctx context.Context, _ string, _ *Range, _ int) ([]models.Reading, error) {
	if err := f.record(ctx); err != nil {
		return nil, err
	}
	return f.readings, nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.record(ctx)
}

func (f *fakeStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStore) Backend() string { return f.name }
