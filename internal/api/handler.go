// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/models"
	ws "github.com/tomtom215/sensorhub/internal/websocket"
)

// Submitter accepts candidate readings. *ingest.Service implements it.
type Submitter interface {
	Submit(ctx context.Context, req *models.IngestRequest) (models.Reading, error)
}

// ReadingReader serves the read endpoints. *repository.ReadingRepository
// implements it.
type ReadingReader interface {
	LatestPerDevice(ctx context.Context) (map[string]models.Reading, error)
	RangeForDevice(ctx context.Context, deviceID string, start, end *int64, limit int) ([]models.Reading, error)
	Ping(ctx context.Context) error
	Backend() string
}

// DeviceDirectory is the known device set. *devices.Registry implements it.
type DeviceDirectory interface {
	Contains(id string) bool
	Devices() []models.DeviceInfo
}

// Handler holds the dependencies of every HTTP endpoint.
type Handler struct {
	ingest    Submitter
	readings  ReadingReader
	devices   DeviceDirectory
	hub       *ws.Hub
	config    *config.Config
	upgrader  websocket.Upgrader
	startTime time.Time
}

// NewHandler creates a Handler. cfg may be nil in tests, in which case all
// websocket origins are accepted.
func NewHandler(ingest Submitter, readings ReadingReader, devices DeviceDirectory, hub *ws.Hub, cfg *config.Config) *Handler {
	h := &Handler{
		ingest:    ingest,
		readings:  readings,
		devices:   devices,
		hub:       hub,
		config:    cfg,
		startTime: time.Now(),
	}
	h.upgrader = h.getUpgrader()
	return h
}
