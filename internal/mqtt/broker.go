// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package mqtt

import (
	"context"
	"fmt"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/metrics"
)

// listenerID names the broker's TCP listener.
const listenerID = "sensorhub-tcp"

// Broker is an embedded MQTT broker for deployments without one. Devices
// and the Subscriber connect to it like to any external broker. Every
// client is allowed; sensors are not authenticated.
type Broker struct {
	addr   string
	logger zerolog.Logger
}

// NewBroker creates a broker that will listen on cfg.ListenAddr.
// Nothing is accepted until Serve.
func NewBroker(cfg config.MQTTConfig) *Broker {
	return &Broker{addr: cfg.ListenAddr, logger: logging.WithComponent("mqtt-broker")}
}

// String implements fmt.Stringer for supervisor logs.
func (b *Broker) String() string {
	return "mqtt-broker"
}

// Serve starts accepting clients and blocks until ctx is done. Each call
// builds a fresh server, so the supervisor can restart it after a failure.
func (b *Broker) Serve(ctx context.Context) error {
	server, err := b.newServer()
	if err != nil {
		return err
	}
	if err := server.Serve(); err != nil {
		_ = server.Close()
		return fmt.Errorf("start MQTT broker: %w", err)
	}
	b.logger.Info().Str("addr", b.addr).Msg("Embedded MQTT broker listening")

	<-ctx.Done()

	if err := server.Close(); err != nil {
		b.logger.Warn().Err(err).Msg("MQTT broker close error")
	}
	b.logger.Info().Msg("Embedded MQTT broker stopped")
	return nil
}

func (b *Broker) newServer() (*mochi.Server, error) {
	server := mochi.New(&mochi.Options{
		InlineClient: false,
		Logger:       logging.NewSlogLogger(),
	})

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("add auth hook: %w", err)
	}
	if err := server.AddHook(&connectionHook{logger: b.logger}, nil); err != nil {
		return nil, fmt.Errorf("add connection hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{
		ID:      listenerID,
		Address: b.addr,
	})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("add TCP listener on %s: %w", b.addr, err)
	}
	return server, nil
}

// connectionHook logs client connections and tracks the connected count.
type connectionHook struct {
	mochi.HookBase
	logger zerolog.Logger
}

// ID identifies the hook to the broker.
func (h *connectionHook) ID() string {
	return "sensorhub-connections"
}

// Provides indicates which hook methods this hook provides
func (h *connectionHook) Provides(b byte) bool {
	return b == mochi.OnConnect || b == mochi.OnDisconnect
}

// OnConnect is called when a client connects to the broker.
func (h *connectionHook) OnConnect(cl *mochi.Client, pk packets.Packet) error {
	metrics.MQTTBrokerClients.Inc()
	h.logger.Debug().
		Str("client_id", logging.SanitizeValue(cl.ID)).
		Str("remote", cl.Net.Remote).
		Msg("MQTT client connected")
	return nil
}

// OnDisconnect is called when a client disconnects or is expired.
func (h *connectionHook) OnDisconnect(cl *mochi.Client, err error, expire bool) {
	metrics.MQTTBrokerClients.Dec()
	event := h.logger.Debug()
	if err != nil {
		event = event.Err(err)
	}
	event.
		Str("client_id", logging.SanitizeValue(cl.ID)).
		Bool("expire", expire).
		Msg("MQTT client disconnected")
}
