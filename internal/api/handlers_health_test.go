// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorhub/internal/models"
)

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		storeDown  bool
		wantStatus int
		wantState  string
	}{
		{"health ok", "/health", false, http.StatusOK, StatusHealthy},
		{"health degraded", "/health", true, http.StatusOK, StatusDegraded},
		{"ready", "/health/ready", false, http.StatusOK, StatusReady},
		{"not ready", "/health/ready", true, http.StatusServiceUnavailable, StatusNotReady},
		{"live", "/health/live", false, http.StatusOK, StatusAlive},
		{"live with store down", "/health/live", true, http.StatusOK, StatusAlive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, nil)
			env.store.fail.Store(tt.storeDown)

			rec := env.do(t, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var got models.HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Status != tt.wantState {
				t.Errorf("status field = %q, want %q", got.Status, tt.wantState)
			}
			if tt.path != "/health/live" && got.Store != "badger" {
				t.Errorf("store = %q, want badger", got.Store)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	env.ingest(t, "sensor-01", 20, 40)

	rec := env.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sensorhub_ingest_total") {
		t.Error("exposition is missing sensorhub_ingest_total")
	}
}
