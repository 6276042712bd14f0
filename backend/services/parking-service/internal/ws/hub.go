package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub fans session-change events out to connected clients, replacing the
// store snapshot listeners the mobile clients used: on every event a client
// re-fetches the active list, which is a read-only call and safe to repeat.
type Hub struct {
	mu           sync.RWMutex
	clients      map[string]*Client
	logger       *zap.Logger
	pingInterval time.Duration
}

type event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// NewHub builds hub.
func NewHub(pingInterval time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		clients:      make(map[string]*Client),
		logger:       logger,
		pingInterval: pingInterval,
	}
}

// Add registers new client.
func (h *Hub) Add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID()] = client
}

// Remove removes client.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// SessionsChanged broadcasts that the set of parked vehicles changed.
func (h *Hub) SessionsChanged() {
	h.broadcast(event{Type: "sessions_changed", At: time.Now().UTC()})
}

func (h *Hub) broadcast(evt event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Warn("failed to encode event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.Send(payload)
	}
}

// Start begins the ping loop keeping idle connections alive.
func (h *Hub) Start(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.RLock()
			for _, client := range h.clients {
				_ = client.Ping()
			}
			h.mu.RUnlock()
		}
	}
}
