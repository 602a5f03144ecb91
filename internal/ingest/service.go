// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/models"
	"github.com/tomtom215/sensorhub/internal/store"
)

// Saver persists an accepted reading.
type Saver interface {
	Save(ctx context.Context, r models.Reading) error
}

// Publisher fans an accepted reading out to live subscribers.
// Publish is best-effort and cannot fail.
type Publisher interface {
	Publish(r models.Reading)
}

// Service runs a submission through validation, persistence and broadcast.
type Service struct {
	validator *Validator
	saver     Saver
	publisher Publisher
}

// NewService wires the pipeline together.
func NewService(validator *Validator, saver Saver, publisher Publisher) *Service {
	return &Service{validator: validator, saver: saver, publisher: publisher}
}

// Submit validates req, saves the resulting reading and publishes it.
//
// A rejected request returns ErrInvalidDevice or ErrInvalidMeasurement and
// touches neither the store nor the hub. A save failure returns an error
// matching store.ErrStoreUnavailable and nothing is published. Submit does
// not retry.
func (s *Service) Submit(ctx context.Context, req *models.IngestRequest) (models.Reading, error) {
	reading, err := s.validator.Validate(req)
	if err != nil {
		return models.Reading{}, err
	}

	if err := s.saver.Save(ctx, reading); err != nil {
		if !errors.Is(err, store.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
		}
		logging.Ctx(ctx).Error().
			Err(err).
			Str("device_id", reading.DeviceID).
			Int64("timestamp", reading.Timestamp).
			Msg("failed to save reading")
		return models.Reading{}, err
	}

	s.publisher.Publish(reading)

	logging.Ctx(ctx).Debug().
		Str("device_id", reading.DeviceID).
		Int64("timestamp", reading.Timestamp).
		Float64("temperature", reading.Temperature).
		Float64("humidity", reading.Humidity).
		Msg("reading accepted")
	return reading, nil
}
