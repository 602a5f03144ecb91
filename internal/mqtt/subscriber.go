// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/ingest"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/metrics"
	"github.com/tomtom215/sensorhub/internal/models"
)

// ErrThrottled is returned when a device publishes faster than its rate limit.
var ErrThrottled = errors.New("device throttled")

// disconnectQuiesce is how long Disconnect waits for in-flight work, in ms.
const disconnectQuiesce = 250

// Submitter accepts candidate readings. *ingest.Service implements it.
type Submitter interface {
	Submit(ctx context.Context, req *models.IngestRequest) (models.Reading, error)
}

// DeviceSet reports whether a device ID is known.
type DeviceSet interface {
	Contains(id string) bool
}

// Subscriber consumes device topics from an MQTT broker and feeds every
// payload through the same ingestion path as HTTP. Rejections are logged
// and counted, never retried.
type Subscriber struct {
	cfg     config.MQTTConfig
	submit  Submitter
	devices DeviceSet
	logger  zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewSubscriber creates a Subscriber. It does not connect until Serve.
func NewSubscriber(cfg config.MQTTConfig, submit Submitter, devices DeviceSet) *Subscriber {
	if cfg.Topic == "" {
		cfg.Topic = DeviceTopic("+")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &Subscriber{
		cfg:      cfg,
		submit:   submit,
		devices:  devices,
		logger:   logging.WithComponent("mqtt-subscriber"),
		limiters: make(map[string]*rate.Limiter),
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *Subscriber) String() string {
	return "mqtt-subscriber"
}

// Serve connects to the broker, subscribes and blocks until ctx is done.
// A failed connect or subscribe is returned so the supervisor restarts the
// service with backoff; later connection losses are handled by the client's
// auto-reconnect, which re-subscribes on every connect.
func (s *Subscriber) Serve(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(s.cfg.BrokerURL).
		SetClientID(s.cfg.ClientID).
		SetConnectTimeout(s.cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetOnConnectHandler(func(c paho.Client) {
			s.subscribe(ctx, c)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			s.logger.Warn().Err(err).Msg("MQTT connection lost")
		})
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		client.Disconnect(0)
		return fmt.Errorf("connect to %s: timed out after %s", s.cfg.BrokerURL, s.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", s.cfg.BrokerURL, err)
	}

	s.logger.Info().
		Str("broker", s.cfg.BrokerURL).
		Str("topic", s.cfg.Topic).
		Msg("MQTT subscriber connected")

	<-ctx.Done()
	client.Disconnect(disconnectQuiesce)
	s.logger.Info().Msg("MQTT subscriber stopped")
	return nil
}

func (s *Subscriber) subscribe(ctx context.Context, c paho.Client) {
	token := c.Subscribe(s.cfg.Topic, byte(s.cfg.QoS), func(_ paho.Client, msg paho.Message) {
		_ = s.HandleMessage(ctx, msg.Topic(), msg.Payload())
	})
	if token.WaitTimeout(s.cfg.ConnectTimeout) && token.Error() != nil {
		s.logger.Error().Err(token.Error()).Str("topic", s.cfg.Topic).Msg("MQTT subscribe failed")
	}
}

// HandleMessage processes one device message and returns the Submit
// outcome. It records the ingest metrics and logs rejections at warn.
func (s *Subscriber) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	metrics.MQTTMessagesReceived.Inc()

	err := s.handle(ctx, topic, payload)
	switch {
	case err == nil:
		metrics.RecordIngest(metrics.SourceMQTT, metrics.IngestAccepted)
	case errors.Is(err, ErrThrottled):
		metrics.RecordIngest(metrics.SourceMQTT, metrics.IngestThrottled)
		s.logger.Warn().Str("topic", logging.SanitizeValue(topic)).Msg("MQTT reading throttled")
	case errors.Is(err, ErrInvalidTopic):
		metrics.RecordIngest(metrics.SourceMQTT, metrics.IngestInvalidDevice)
		s.logger.Warn().Err(err).Msg("MQTT reading rejected")
	default:
		metrics.RecordIngest(metrics.SourceMQTT, ingest.ResultLabel(err))
		s.logger.Warn().Err(err).Str("topic", logging.SanitizeValue(topic)).Msg("MQTT reading rejected")
	}
	return err
}

func (s *Subscriber) handle(ctx context.Context, topic string, payload []byte) error {
	deviceID, err := ParseTopic(topic)
	if err != nil {
		return err
	}
	if !s.devices.Contains(deviceID) {
		return fmt.Errorf("%w: %q", ingest.ErrInvalidDevice, deviceID)
	}

	req, err := DecodePayload(deviceID, payload)
	if err != nil {
		return err
	}

	if !s.allow(deviceID) {
		return fmt.Errorf("%w: %s", ErrThrottled, deviceID)
	}

	_, err = s.submit.Submit(ctx, req)
	return err
}

// allow applies the per-device rate limit. Only known devices get a
// limiter, so the map is bounded by the device set.
func (s *Subscriber) allow(deviceID string) bool {
	if s.cfg.RatePerDevice <= 0 {
		return true
	}

	s.mu.Lock()
	lim, ok := s.limiters[deviceID]
	if !ok {
		burst := s.cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(s.cfg.RatePerDevice), burst)
		s.limiters[deviceID] = lim
	}
	s.mu.Unlock()

	return lim.Allow()
}
