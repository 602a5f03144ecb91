// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/devices"
	"github.com/tomtom215/sensorhub/internal/ingest"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
	"github.com/tomtom215/sensorhub/internal/repository"
	"github.com/tomtom215/sensorhub/internal/store"
	ws "github.com/tomtom215/sensorhub/internal/websocket"
)

func init() {
	logging.SetLogger(logging.NewTestLogger(io.Discard))
}

var errDiskFull = errors.New("disk full")

var testRegistry = devices.NewRegistry(
	[]string{"sensor-01", "sensor-02", "sensor-03", "sensor-04"},
	map[string]models.Location{"sensor-01": {X: 1, Y: 2, Z: 3}},
)

// toggleStore wraps a real store and fails every call while fail is set.
type toggleStore struct {
	store.TimeSeriesStore
	fail atomic.Bool
}

func (s *toggleStore) Upsert(ctx context.Context, r models.Reading) error {
	if s.fail.Load() {
		return errDiskFull
	}
	return s.TimeSeriesStore.Upsert(ctx, r)
}

func (s *toggleStore) Query(ctx context.Context, id string, rng *store.Range, limit int) ([]models.Reading, error) {
	if s.fail.Load() {
		return nil, errDiskFull
	}
	return s.TimeSeriesStore.Query(ctx, id, rng, limit)
}

func (s *toggleStore) Ping(ctx context.Context) error {
	if s.fail.Load() {
		return errDiskFull
	}
	return s.TimeSeriesStore.Ping(ctx)
}

// stepClock starts at base and advances one second per reading.
type stepClock struct {
	base time.Time
	n    atomic.Int64
}

func (c *stepClock) Now() time.Time {
	return c.base.Add(time.Duration(c.n.Add(1)-1) * time.Second)
}

type testEnv struct {
	handler http.Handler
	store   *toggleStore
	hub     *ws.Hub
	clock   *stepClock
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
	}
}

// newTestEnv builds the full HTTP stack over an in-memory badger store and a
// running hub.
func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, cfg, config.StoreConfig{})
}

// newTestEnvWithStore is newTestEnv with the production store chain from
// storeCfg between the repository and the badger store.
func newTestEnvWithStore(t *testing.T, cfg *config.Config, storeCfg config.StoreConfig) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}

	badger, err := store.OpenBadger(config.BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	ts := &toggleStore{TimeSeriesStore: badger}
	t.Cleanup(func() { _ = badger.Close() })

	hub := ws.NewHub(config.HubConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)

	clock := &stepClock{base: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var chain store.TimeSeriesStore = ts
	if storeCfg.Breaker.Enabled {
		chain = store.Wrap(ts, storeCfg)
	}
	repo := repository.New(chain, testRegistry)
	svc := ingest.NewService(ingest.NewValidator(testRegistry, clock), repo, hub)

	h := NewHandler(svc, repo, testRegistry, hub, cfg)
	router := NewRouter(h, NewChiMiddleware(NewChiMiddlewareConfig(cfg.Security)))

	return &testEnv{handler: router.SetupChi(), store: ts, hub: hub, clock: clock}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) ingest(t *testing.T, device string, temp, hum float64) {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{"deviceId": device, "temperature": temp, "humidity": hum})
	if rec := e.do(t, http.MethodPost, "/api/sensors/data", string(body)); rec.Code != http.StatusOK {
		t.Fatalf("ingest %s: status %d body %s", device, rec.Code, rec.Body.String())
	}
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}
