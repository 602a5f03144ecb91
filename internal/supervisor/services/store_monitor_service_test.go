// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakePinger struct {
	mu    sync.Mutex
	err   error
	pings atomic.Int32
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.pings.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakePinger) Backend() string { return "fake" }

func (f *fakePinger) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStoreMonitorService_TracksHealth(t *testing.T) {
	t.Parallel()
	store := &fakePinger{}
	svc := NewStoreMonitorService(store, 10*time.Millisecond)
	if !svc.Healthy() {
		t.Fatal("Healthy() = false before first check")
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	store.setErr(errors.New("connection refused"))
	waitFor(t, func() bool { return !svc.Healthy() })

	store.setErr(nil)
	waitFor(t, svc.Healthy)

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

func TestStoreMonitorService_Disabled(t *testing.T) {
	t.Parallel()
	store := &fakePinger{}
	svc := NewStoreMonitorService(store, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v", err)
	}
	if store.pings.Load() != 0 {
		t.Errorf("pings = %d, want 0", store.pings.Load())
	}
}

func TestNewStoreMonitorService_Timeout(t *testing.T) {
	t.Parallel()
	tests := []struct {
		interval time.Duration
		want     time.Duration
	}{
		{time.Second, time.Second},
		{time.Minute, 5 * time.Second},
		{0, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := NewStoreMonitorService(&fakePinger{}, tt.interval).timeout; got != tt.want {
			t.Errorf("interval %v: timeout %v, want %v", tt.interval, got, tt.want)
		}
	}
}
