// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package mqtt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorhub/internal/ingest"
	"github.com/tomtom215/sensorhub/internal/models"
)

// Topic layout: sensors/{deviceId}/data.
const (
	TopicRoot   = "sensors"
	TopicSuffix = "data"
)

// ErrInvalidTopic is returned for topics outside sensors/{deviceId}/data.
var ErrInvalidTopic = errors.New("invalid topic")

// DeviceTopic returns the topic a device publishes its readings on.
func DeviceTopic(deviceID string) string {
	return TopicRoot + "/" + deviceID + "/" + TopicSuffix
}

// ParseTopic extracts the device ID from a device topic.
func ParseTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != TopicRoot || parts[2] != TopicSuffix || parts[1] == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	return parts[1], nil
}

// DecodePayload turns a device payload into an ingest request for deviceID.
//
//	{"temperature": 22.5, "humidity": 65.3}
//
// A deviceId (or legacy sensorId) in the payload is optional but must match
// the topic. A payload that is not a JSON object is an invalid measurement.
func DecodePayload(deviceID string, payload []byte) (*models.IngestRequest, error) {
	var req models.IngestRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ingest.ErrInvalidMeasurement, err)
	}

	if claimed := req.Device(); claimed != "" && claimed != deviceID {
		return nil, fmt.Errorf("%w: payload device %q does not match topic device %q",
			ingest.ErrInvalidDevice, claimed, deviceID)
	}

	req.DeviceID = deviceID
	req.SensorID = ""
	return &req, nil
}
