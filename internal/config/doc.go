// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package config loads SensorHub configuration with Koanf v2.
//
// Sources are layered: struct defaults, an optional YAML file, an optional
// .env file (via godotenv, never overriding the real environment) and finally
// environment variables. Only variables listed in envMappings are read.
//
// A minimal config.yaml:
//
//	devices:
//	  ids: [sensor-01, sensor-02]
//	  locations:
//	    sensor-01: {x: 1.5, y: 0.2, z: 3.0}
//	store:
//	  backend: duckdb
//	  duckdb:
//	    path: ./sensorhub.duckdb
//
// Load validates the result; an invalid configuration never reaches the
// rest of the service.
package config
