package ws

import (
	"encoding/json"
	"sync"

	"mediahub/chat-center/models"
	"mediahub/chat-center/utils"
)

// Hub fans newly posted messages out to connected WebSocket clients. The
// feed is notification-only; all writes go through the HTTP API.
type Hub struct {
	logger *utils.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub(logger *utils.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}
}

// Register adds a client to the broadcast list.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.logger.Info("WebSocket client connected", "clients", len(h.clients))
}

// Unregister removes a client from the broadcast list.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.logger.Info("WebSocket client disconnected", "clients", len(h.clients))
	}
}

// Broadcast delivers a message to every connected client. Clients with full
// send buffers are skipped; they will catch up via GET /messages.
func (h *Hub) Broadcast(msg models.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.Enqueue(data)
	}
}
