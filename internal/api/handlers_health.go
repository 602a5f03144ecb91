// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
)

// Health statuses.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// healthPingTimeout bounds the store ping of the health endpoints.
const healthPingTimeout = 2 * time.Second

// Health handles GET /health. It always answers 200; status is degraded
// when the store does not respond.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := StatusHealthy
	if err := h.pingStore(r.Context()); err != nil {
		status = StatusDegraded
	}
	respondJSON(w, http.StatusOK, h.healthResponse(status))
}

// HealthLive handles GET /health/live: 200 whenever the process serves
// requests, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:      StatusAlive,
		Subscribers: h.subscriberCount(),
		Uptime:      h.uptime(),
	})
}

// HealthReady handles GET /health/ready: 503 until the store answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.pingStore(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
		respondJSON(w, http.StatusServiceUnavailable, h.healthResponse(StatusNotReady))
		return
	}
	respondJSON(w, http.StatusOK, h.healthResponse(StatusReady))
}

func (h *Handler) pingStore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.readings.Ping(ctx)
}

func (h *Handler) healthResponse(status string) models.HealthResponse {
	return models.HealthResponse{
		Status:      status,
		Store:       h.readings.Backend(),
		Subscribers: h.subscriberCount(),
		Uptime:      h.uptime(),
	}
}

func (h *Handler) subscriberCount() int {
	if h.hub == nil {
		return 0
	}
	return h.hub.GetClientCount()
}

func (h *Handler) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}
