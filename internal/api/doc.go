// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

/*
Package api provides the HTTP surface of SensorHub.

Endpoints:

	POST /api/sensors/data              ingest one reading
	GET  /api/sensors                   latest reading per device
	GET  /api/sensors/{id}/readings     history, newest first (?start&end&limit)
	GET  /api/devices                   known devices and their placement
	GET  /ws                            live sensor_update stream
	GET  /health, /health/live, /health/ready
	GET  /metrics                       Prometheus exposition

Successful reads return bare JSON (an object keyed by device ID or an array
of readings). Every failure returns {"error": "<message>"} where message is
one of the Msg constants; devices and dashboards match on those strings.

Ingestion runs through a Submitter (the ingest service), so an HTTP POST and
an MQTT publish of the same payload behave identically. Reads go straight to
the ReadingReader.

Middleware order is RealIP, RequestID, AccessLog, Recoverer and CORS for
all routes, then Prometheus instrumentation and per-IP rate limits (a
stricter one on the ingestion route) for /api and /health.
*/
package api
