// Package sse streams view updates to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/aew-track-map/internal/observability"
	"github.com/jonboulle/clockwork"
)

// clientBuffer is the per-client queue length. A full queue drops messages
// for that client rather than blocking the broadcaster.
const clientBuffer = 32

// Message is one Server-Sent Event.
type Message struct {
	ID   int64
	Type string
	Data any
}

// Hub fans messages out to connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan Message
	last    *Message
	nextID  int64
	connSeq atomic.Int64
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewHub creates an empty hub.
func NewHub(clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		clients: make(map[string]chan Message),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// AddClient registers a client and returns its message channel. The most
// recent broadcast, if any, is queued immediately so new clients start in sync.
func (h *Hub) AddClient(clientID string) <-chan Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.clients[clientID]; ok {
		close(existing)
		delete(h.clients, clientID)
	}

	ch := make(chan Message, clientBuffer)
	if h.last != nil {
		ch <- *h.last
	}
	h.clients[clientID] = ch
	h.metrics.SSEClients.Set(float64(len(h.clients)))
	h.logger.Debug("sse client connected", "client", clientID, "total", len(h.clients))
	return ch
}

// RemoveClient unregisters a client and closes its channel.
func (h *Hub) RemoveClient(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
		h.metrics.SSEClients.Set(float64(len(h.clients)))
		h.logger.Debug("sse client disconnected", "client", clientID, "remaining", len(h.clients))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client without blocking.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if msg.ID == 0 {
		h.nextID = max(h.nextID+1, h.clock.Now().UnixMilli())
		msg.ID = h.nextID
	}
	h.last = &msg

	for id, ch := range h.clients {
		select {
		case ch <- msg:
		default:
			h.logger.Warn("sse client queue full, dropping message", "client", id, "type", msg.Type)
		}
	}
}

// WriteMessage encodes msg in the SSE wire format.
func WriteMessage(w io.Writer, msg Message) error {
	if _, err := fmt.Fprintf(w, "id: %d\n", msg.ID); err != nil {
		return err
	}
	if msg.Type != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", msg.Type); err != nil {
			return err
		}
	}
	data := []byte("{}")
	if msg.Data != nil {
		var err error
		data, err = json.Marshal(msg.Data)
		if err != nil {
			return fmt.Errorf("marshal sse data: %w", err)
		}
	}
	_, err := fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
