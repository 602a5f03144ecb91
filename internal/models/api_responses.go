// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package models

// SuccessResponse is the body of an accepted ingestion: {"success": true}.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every failed API request: {"error": "..."}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReadingsQuery holds the parsed query string of the readings endpoint.
// Start and End are only applied as a filter when both are present.
type ReadingsQuery struct {
	Start *int64 `validate:"omitempty,gte=0"`
	End   *int64 `validate:"omitempty,gte=0"`
	Limit int
}

// DeviceInfo describes one known device for /api/devices.
type DeviceInfo struct {
	ID       string    `json:"id"`
	Location *Location `json:"location,omitempty"`
}

// Location is a static placement of a device in the dashboard scene.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status      string `json:"status"`
	Store       string `json:"store,omitempty"`
	Subscribers int    `json:"subscribers"`
	Uptime      string `json:"uptime,omitempty"`
}
