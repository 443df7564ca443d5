// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/stackchart/internal/chart"
	"github.com/tomtom215/stackchart/internal/logging"
	"github.com/tomtom215/stackchart/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types
const (
	MessageTypeChange   = "chart_change"
	MessageTypeSnapshot = "chart_snapshot"
	MessageTypeError    = "error"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
)

// Message is one websocket frame. Chart is empty for connection-level frames.
type Message struct {
	Type  string `json:"type"`
	Chart string `json:"chart,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Source is a chart whose dataset changes are pushed to clients.
type Source interface {
	ID() string
	Snapshot() chart.Snapshot
	Subscribe(fn func(chart.Change)) (cancel func())
}

// Hub maintains the set of active clients and broadcasts chart changes to them.
type Hub struct {
	clients   map[*Client]struct{}
	broadcast chan Message
	mu        sync.RWMutex

	srcMu   sync.RWMutex
	sources map[string]Source
}

// NewHub creates a hub with an empty client set.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan Message, 256),
		sources:   make(map[string]Source),
	}
}

// Watch forwards every change of src to interested clients until the returned
// cancel is called.
func (h *Hub) Watch(src Source) (cancel func()) {
	id := src.ID()
	h.srcMu.Lock()
	h.sources[id] = src
	h.srcMu.Unlock()

	unsubscribe := src.Subscribe(func(ch chart.Change) {
		h.BroadcastChange(id, ch)
	})
	return func() {
		unsubscribe()
		h.srcMu.Lock()
		if h.sources[id] == src {
			delete(h.sources, id)
		}
		h.srcMu.Unlock()
	}
}

func (h *Hub) snapshot(chartID string) (chart.Snapshot, bool) {
	h.srcMu.RLock()
	src, ok := h.sources[chartID]
	h.srcMu.RUnlock()
	if !ok {
		return chart.Snapshot{}, false
	}
	return src.Snapshot(), true
}

// Register adds a client to the broadcast set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.TrackWSConnection(true)
	logging.Info().Int("total_clients", n).Msg("websocket client connected")
}

// Unregister removes a client and closes its send channel. Unknown clients
// are ignored.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	n := len(h.clients)
	h.mu.Unlock()

	if removed {
		logging.Info().Int("total_clients", n).Msg("websocket client disconnected")
	}
}

func (h *Hub) removeLocked(c *Client) bool {
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	metrics.TrackWSConnection(false)
	return true
}

// Run fans queued messages out to clients until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	n := h.ClientCount()
	h.closeAllClients()

	reason := ShutdownReasonContextCanceled
	if ctx.Err() == context.DeadlineExceeded {
		reason = ShutdownReasonContextDeadline
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", n).
		Msg("websocket hub stopped")
}

// sortedClients returns clients in connection order. Callers hold h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// reply queues msg for one client if it is still registered.
func (h *Hub) reply(c *Client, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	for _, c := range h.sortedClients() {
		if !c.Wants(msg.Chart) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}

	for _, c := range slow {
		metrics.WSFramesDropped.Inc()
		logging.Warn().Uint64("client", c.id).Str("chart", msg.Chart).Msg("websocket client too slow, disconnecting")
		h.removeLocked(c)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.sortedClients() {
		h.removeLocked(c)
	}
}

// BroadcastChange queues a dataset change for the clients watching chartID.
func (h *Hub) BroadcastChange(chartID string, ch chart.Change) {
	h.enqueue(Message{Type: MessageTypeChange, Chart: chartID, Data: ch})
}

// BroadcastJSON queues an arbitrary message.
func (h *Hub) BroadcastJSON(messageType, chartID string, data any) {
	h.enqueue(Message{Type: messageType, Chart: chartID, Data: data})
}

func (h *Hub) enqueue(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		metrics.WSFramesDropped.Inc()
		logging.Warn().Str("type", msg.Type).Str("chart", msg.Chart).Msg("broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage encodes a message as JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
