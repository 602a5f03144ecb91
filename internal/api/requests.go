// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorhub/internal/models"
	"github.com/tomtom215/sensorhub/internal/validation"
)

// maxIngestBodyBytes bounds the body of POST /api/sensors/data.
const maxIngestBodyBytes = 64 << 10

// parseReadingsQuery reads start, end and limit from the query string.
// Absent or empty parameters are left unset; anything that is not a base-10
// integer is an error.
//
//	GET /api/sensors/sensor-01/readings?start=1767225600&end=1767229200&limit=50
func parseReadingsQuery(r *http.Request) (models.ReadingsQuery, error) {
	q := r.URL.Query()
	var out models.ReadingsQuery

	var err error
	if out.Start, err = optionalInt64(q.Get("start")); err != nil {
		return out, fmt.Errorf("start: %w", err)
	}
	if out.End, err = optionalInt64(q.Get("end")); err != nil {
		return out, fmt.Errorf("end: %w", err)
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if out.Limit, err = strconv.Atoi(raw); err != nil {
			return out, fmt.Errorf("limit: %w", err)
		}
	}

	if verr := validation.ValidateStruct(&out); verr != nil {
		return out, verr
	}
	return out, nil
}

func optionalInt64(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// decodeIngestRequest decodes the ingestion body. Unknown fields are ignored.
func decodeIngestRequest(w http.ResponseWriter, r *http.Request) (*models.IngestRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBodyBytes)

	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
