// Package sse streams procurement domain events to connected browsers over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// Event is one frame on the wire.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client is one open SSE connection.
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub tracks all connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("sse client registered",
		zap.String("client_id", client.ID),
		zap.Int("total", len(h.clients)))
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("sse client unregistered",
			zap.String("client_id", clientID),
			zap.Int("total", len(h.clients)))
	}
}

// Broadcast sends an event to every connected client. A slow client loses
// the event rather than stalling the hub.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, dropping event",
				zap.String("client_id", client.ID),
				zap.String("event", event.EventType))
		}
	}
}

// Publish implements service.EventPublisher by broadcasting the domain event
// as one SSE frame.
func (h *Hub) Publish(event service.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal domain event", zap.Error(err))
		return
	}
	h.Broadcast(Event{
		EventType: event.Type,
		Data:      string(payload),
	})
}
