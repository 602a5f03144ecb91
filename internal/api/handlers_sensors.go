// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sensorhub/internal/ingest"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/metrics"
	"github.com/tomtom215/sensorhub/internal/models"
)

// IngestReading handles POST /api/sensors/data.
//
//	{"deviceId": "sensor-01", "temperature": 22.47, "humidity": 65.3}
//
// Responds 200 {"success": true} once the reading is stored. The broadcast
// to live viewers is best effort and never affects the response.
func (h *Handler) IngestReading(w http.ResponseWriter, r *http.Request) {
	req, err := decodeIngestRequest(w, r)
	if err != nil {
		err = decodeError(err)
	} else {
		_, err = h.ingest.Submit(r.Context(), req)
	}

	metrics.RecordIngest(metrics.SourceHTTP, ingest.ResultLabel(err))

	if err != nil {
		status, msg := ingestStatus(err)
		if status < http.StatusInternalServerError {
			logging.Ctx(r.Context()).Warn().
				Err(err).
				Str("device_id", logging.SanitizeValue(deviceOf(req))).
				Msg("reading rejected")
		}
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

func deviceOf(req *models.IngestRequest) string {
	if req == nil {
		return ""
	}
	return req.Device()
}

// LatestReadings handles GET /api/sensors: the newest reading of every
// device that has one, keyed by device ID.
func (h *Handler) LatestReadings(w http.ResponseWriter, r *http.Request) {
	latest, err := h.readings.LatestPerDevice(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to load latest readings")
		respondError(w, http.StatusInternalServerError, MsgFailedToLoadReadings)
		return
	}
	respondJSON(w, http.StatusOK, latest)
}

// DeviceReadings handles GET /api/sensors/{id}/readings.
//
// start and end (epoch seconds) filter inclusively only when both are given.
// Results are newest first and capped by limit. An unknown device has no
// readings, so it gets an empty array without a store query.
func (h *Handler) DeviceReadings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	q, err := parseReadingsQuery(r)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("invalid readings query")
		respondError(w, http.StatusBadRequest, MsgInvalidQueryParam)
		return
	}

	if !h.devices.Contains(id) {
		respondJSON(w, http.StatusOK, []models.Reading{})
		return
	}

	rows, err := h.readings.RangeForDevice(r.Context(), id, q.Start, q.End, q.Limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("device_id", id).Msg("failed to load readings")
		respondError(w, http.StatusInternalServerError, MsgFailedToLoadReadings)
		return
	}
	if rows == nil {
		rows = []models.Reading{}
	}
	respondJSON(w, http.StatusOK, rows)
}

// Devices handles GET /api/devices.
func (h *Handler) Devices(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.devices.Devices())
}

// NotFound answers unknown routes with the JSON error body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, MsgNotFound)
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}
