// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tomtom215/sensorhub/internal/logging"
)

// Pinger is the store subset the monitor needs.
type Pinger interface {
	Ping(ctx context.Context) error
	Backend() string
}

// StoreMonitorService pings the store on an interval and logs when it
// becomes unreachable or recovers. Pings go through the store decorators,
// so a failing backend also shows up in the breaker and error metrics
// between requests.
type StoreMonitorService struct {
	store    Pinger
	interval time.Duration
	timeout  time.Duration
	healthy  atomic.Bool
}

// NewStoreMonitorService checks store every interval. Each ping is bounded
// by the smaller of the interval and 5s.
func NewStoreMonitorService(store Pinger, interval time.Duration) *StoreMonitorService {
	timeout := 5 * time.Second
	if interval > 0 && interval < timeout {
		timeout = interval
	}
	s := &StoreMonitorService{store: store, interval: interval, timeout: timeout}
	s.healthy.Store(true)
	return s
}

// Healthy reports the result of the last ping. It is true before the
// first check.
func (s *StoreMonitorService) Healthy() bool {
	return s.healthy.Load()
}

// Serve implements suture.Service. A non-positive interval parks until ctx
// is done.
func (s *StoreMonitorService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *StoreMonitorService) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.store.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}

	was := s.healthy.Swap(err == nil)
	switch {
	case err != nil && was:
		logging.Warn().Err(err).Str("backend", s.store.Backend()).Msg("Store became unreachable")
	case err == nil && !was:
		logging.Info().Str("backend", s.store.Backend()).Msg("Store recovered")
	}
}

func (s *StoreMonitorService) String() string {
	return "store-monitor"
}
