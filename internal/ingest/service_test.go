// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/sensorhub/internal/metrics"
	"github.com/tomtom215/sensorhub/internal/models"
	"github.com/tomtom215/sensorhub/internal/store"
)

type recordingSaver struct {
	mu    sync.Mutex
	err   error
	saved []models.Reading
}

func (s *recordingSaver) Save(_ context.Context, r models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, r)
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []models.Reading
}

func (p *recordingPublisher) Publish(r models.Reading) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, r)
}

func newTestService(saveErr error) (*Service, *recordingSaver, *recordingPublisher) {
	saver := &recordingSaver{err: saveErr}
	pub := &recordingPublisher{}
	return NewService(NewValidator(testRegistry(), fixedClock()), saver, pub), saver, pub
}

func TestService_Submit_Accepted(t *testing.T) {
	t.Parallel()
	svc, saver, pub := newTestService(nil)

	got, err := svc.Submit(context.Background(), &models.IngestRequest{
		DeviceID:    "sensor-01",
		Temperature: models.Number(22.47),
		Humidity:    models.Number(65.34),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Temperature != 22.5 || got.Humidity != 65.3 {
		t.Errorf("Submit() = %+v", got)
	}
	if len(saver.saved) != 1 || saver.saved[0] != got {
		t.Errorf("saved = %+v, want [%+v]", saver.saved, got)
	}
	if len(pub.published) != 1 || pub.published[0] != got {
		t.Errorf("published = %+v, want [%+v]", pub.published, got)
	}
}

func TestService_Submit_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     *models.IngestRequest
		wantErr error
	}{
		{
			name:    "unknown device",
			req:     &models.IngestRequest{DeviceID: "sensor-99", Temperature: models.Number(1), Humidity: models.Number(1)},
			wantErr: ErrInvalidDevice,
		},
		{
			name:    "bad measurement",
			req:     &models.IngestRequest{DeviceID: "sensor-01", Temperature: &models.Measurement{}, Humidity: models.Number(1)},
			wantErr: ErrInvalidMeasurement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, saver, pub := newTestService(nil)

			_, err := svc.Submit(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.wantErr)
			}
			if len(saver.saved) != 0 {
				t.Errorf("store received %d writes, want 0", len(saver.saved))
			}
			if len(pub.published) != 0 {
				t.Errorf("hub received %d publishes, want 0", len(pub.published))
			}
		})
	}
}

func TestService_Submit_StoreFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		saveErr error
	}{
		{"wrapped sentinel", store.ErrCircuitOpen},
		{"raw backend error", errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _, pub := newTestService(tt.saveErr)

			_, err := svc.Submit(context.Background(), &models.IngestRequest{
				DeviceID:    "sensor-02",
				Temperature: models.Number(20),
				Humidity:    models.Number(50),
			})
			if !errors.Is(err, store.ErrStoreUnavailable) {
				t.Fatalf("Submit() error = %v, want ErrStoreUnavailable", err)
			}
			if len(pub.published) != 0 {
				t.Errorf("hub received %d publishes after a failed save, want 0", len(pub.published))
			}
		})
	}
}

func TestResultLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.IngestAccepted},
		{ErrInvalidDevice, metrics.IngestInvalidDevice},
		{ErrInvalidMeasurement, metrics.IngestInvalidMeasurement},
		{store.ErrStoreUnavailable, metrics.IngestStoreError},
		{store.ErrCircuitOpen, metrics.IngestStoreError},
	}
	for _, tt := range tests {
		if got := ResultLabel(tt.err); got != tt.want {
			t.Errorf("ResultLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
