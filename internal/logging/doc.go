// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package logging provides the zerolog-based structured logger used across
// SensorHub.
//
// A single global logger is configured once at startup from the LOG_LEVEL,
// LOG_FORMAT and LOG_CALLER settings and then used through package-level
// helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("device_id", id).Msg("reading stored")
//	logging.Ctx(ctx).Warn().Err(err).Msg("reading rejected")
//
// JSON is the production format. The console format is meant for local
// development only.
//
// # Correlation
//
// HTTP requests carry a request ID (set by the request ID middleware) and
// MQTT messages carry a short correlation ID. Ctx attaches whichever of the
// two is present in the context to every log line.
//
// # slog bridge
//
// Suture logs supervisor events through log/slog. NewSlogLogger returns a
// *slog.Logger that writes into the same zerolog stream:
//
//	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()
//
// # Untrusted values
//
// Device IDs, MQTT topics and websocket origins come from the network.
// Pass them through SanitizeValue before logging.
package logging
