// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

// Package mqtt ingests device readings over MQTT.
//
// Devices publish {"temperature": t, "humidity": h} to sensors/{deviceId}/data.
// The Subscriber (eclipse/paho.mqtt.golang) consumes sensors/+/data and hands
// every payload to the same ingest service as the HTTP endpoint, after a
// per-device token bucket (golang.org/x/time/rate). For single-box setups
// the Broker runs an embedded mochi-mqtt server that devices and the
// Subscriber connect to.
//
// Both types implement suture.Service and are run by the supervisor tree.
package mqtt
