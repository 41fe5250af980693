package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Table names broadcast on the change channel. Subscribers re-query
// the whole table on any event; messages carry no row payload.
const (
	TableProgress    = "cleaning_progress"
	TablePreferences = "user_preferences"
	TableSwaps       = "area_swaps"
)

// Message is a change notification for one backend table. The payload
// is intentionally empty beyond the table and action: clients reload
// the full dataset rather than merging deltas.
type Message struct {
	Type   string `json:"type"`
	Table  string `json:"table"`
	Action string `json:"action"`
}

// NewMessage creates a change notification for the given table.
func NewMessage(table, action string) Message {
	return Message{
		Type:   table + "_" + action,
		Table:  table,
		Action: action,
	}
}

// Hub maintains the set of connected clients and fans change
// notifications out to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a change notification to every connected client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
