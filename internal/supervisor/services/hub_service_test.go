// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/websocket"
)

type mockContextHub struct {
	runErr   error
	runCount atomic.Int32
}

func (m *mockContextHub) RunWithContext(ctx context.Context) error {
	m.runCount.Add(1)
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHubService_Interface(t *testing.T) {
	var _ suture.Service = (*HubService)(nil)
	var _ ContextHub = (*websocket.Hub)(nil)
}

func TestHubService_Serve(t *testing.T) {
	t.Run("returns context error on cancellation", func(t *testing.T) {
		hub := &mockContextHub{}
		svc := NewHubService(hub)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return")
		}
	})

	t.Run("propagates hub error", func(t *testing.T) {
		want := errors.New("hub crashed")
		svc := NewHubService(&mockContextHub{runErr: want})
		if err := svc.Serve(context.Background()); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	})

	t.Run("restarted by supervisor", func(t *testing.T) {
		hub := &mockContextHub{runErr: errors.New("boom")}
		sup := suture.New("test-sup", suture.Spec{
			FailureThreshold: 100,
			FailureBackoff:   time.Millisecond,
			Timeout:          time.Second,
		})
		sup.Add(NewHubService(hub))

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		errCh := sup.ServeBackground(ctx)

		time.Sleep(100 * time.Millisecond)
		cancel()
		<-errCh

		if hub.runCount.Load() < 2 {
			t.Errorf("expected restarts, got %d runs", hub.runCount.Load())
		}
	})
}

func TestHubService_RealHub(t *testing.T) {
	hub := websocket.NewHub(config.HubConfig{})
	svc := NewHubService(hub)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
}

func TestHubService_String(t *testing.T) {
	if got := NewHubService(&mockContextHub{}).String(); got != "broadcast-hub" {
		t.Errorf("String() = %q", got)
	}
}
