// SensorHub - Real-time Environmental Sensor Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sensorhub/internal/config"
	"github.com/tomtom215/sensorhub/internal/logging"
	"github.com/tomtom215/sensorhub/internal/metrics"
	"github.com/tomtom215/sensorhub/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types sent to subscribers.
const (
	MessageTypeConnected    = "connected"
	MessageTypeSensorUpdate = "sensor_update"
)

// WelcomeText is the Message of the connected acknowledgment.
const WelcomeText = "Welcome"

// Message is a frame on the live channel.
//
//	{"type":"connected","message":"Welcome"}
//	{"type":"sensor_update","data":{"deviceId":"sensor-01",...}}
type Message struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrHubStopped is returned by Subscribe when the hub is not running.
var ErrHubStopped = errors.New("websocket hub stopped")

type eventKind uint8

const (
	eventPublish eventKind = iota
	eventRegister
	eventUnregister
)

type hubEvent struct {
	kind    eventKind
	client  *Client
	message Message
}

// Hub owns one set of live subscribers and fans accepted readings out to them.
//
// Publish, Subscribe and Unsubscribe all go through one queue consumed by
// the goroutine running RunWithContext, so they take effect in the order
// they were made and the subscriber map is only changed there. A reader
// that subscribes after a Publish returned never sees that reading.
type Hub struct {
	clients map[*Client]bool
	events  chan hubEvent
	done    chan struct{}
	mu      sync.RWMutex
	cfg     config.HubConfig
}

// NewHub creates a Hub. Zero fields of cfg take their defaults.
func NewHub(cfg config.HubConfig) *Hub {
	if cfg.BroadcastBuffer <= 0 {
		cfg.BroadcastBuffer = 256
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = 256
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 512
	}
	return &Hub{
		events:  make(chan hubEvent, cfg.BroadcastBuffer),
		clients: make(map[*Client]bool),
		cfg:     cfg,
	}
}

// Config returns the effective hub settings.
func (h *Hub) Config() config.HubConfig {
	return h.cfg
}

// RunWithContext processes hub events until ctx is done, then closes every
// subscriber and returns ctx.Err(). It may be called again after returning,
// which lets a supervisor restart it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	done := make(chan struct{})
	h.mu.Lock()
	h.done = done
	h.mu.Unlock()
	defer close(done)

	for {
		// Shutdown wins over queued work.
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case ev := <-h.events:
			h.handle(ev)
		}
	}
}

func (h *Hub) handle(ev hubEvent) {
	switch ev.kind {
	case eventRegister:
		h.addClient(ev.client)
	case eventUnregister:
		h.removeClient(ev.client)
	case eventPublish:
		h.broadcastToClients(ev.message)
	}
}

// stopped returns a channel that is closed while the hub is not running.
// It is nil before the first run, which blocks forever in a select.
func (h *Hub) stopped() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.done
}

// Subscribe registers c. Its first message is the connected acknowledgment.
// Subscribe waits for queue space, ctx, or the hub to stop.
func (h *Hub) Subscribe(ctx context.Context, c *Client) error {
	stopped := h.stopped()
	select {
	case <-stopped:
		return ErrHubStopped
	default:
	}

	select {
	case h.events <- hubEvent{kind: eventRegister, client: c}:
		return nil
	case <-stopped:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unsubscribe removes c. It is safe to call more than once and for a client
// the hub has already dropped.
func (h *Hub) Unsubscribe(c *Client) {
	select {
	case <-c.closed:
		return
	default:
	}

	select {
	case h.events <- hubEvent{kind: eventUnregister, client: c}:
	case <-c.closed:
	case <-h.stopped():
	}
}

// Publish queues a sensor_update for every subscriber. It never blocks: when
// the hub queue is full the update is dropped and counted.
func (h *Hub) Publish(reading models.Reading) {
	ev := hubEvent{kind: eventPublish, message: Message{Type: MessageTypeSensorUpdate, Data: reading}}

	select {
	case h.events <- ev:
	default:
		metrics.RecordBroadcastDrop("hub_full")
		logging.Warn().
			Str("device_id", reading.DeviceID).
			Int64("timestamp", reading.Timestamp).
			Msg("broadcast channel full, dropping sensor_update")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// The buffer is empty on registration, so this cannot block.
	c.send <- Message{Type: MessageTypeConnected, Message: WelcomeText}
	metrics.RecordMessageSent(MessageTypeConnected)

	h.clients[c] = true
	metrics.SetSubscribers(len(h.clients))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", len(h.clients)).Msg("websocket client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	metrics.SetSubscribers(len(h.clients))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", len(h.clients)).Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs why the hub stopped.
// ctx.Err() is not logged as an error: cancellation is the normal path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// sortedClients snapshots the subscriber set in client ID order.
// Callers must hold h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients enqueues message for every client without blocking.
// A client whose buffer is full is dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClients() {
		select {
		case client.send <- message:
			metrics.RecordMessageSent(message.Type)
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		delete(h.clients, client)
		client.close()
		metrics.RecordBroadcastDrop("client_slow")
		logging.Warn().Uint64("client_id", client.id).Msg("dropping slow websocket client")
	}
	if len(toRemove) > 0 {
		metrics.SetSubscribers(len(h.clients))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		delete(h.clients, client)
		client.close()
	}
	metrics.SetSubscribers(0)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
