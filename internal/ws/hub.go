package ws

import (
	"encoding/json"
	"sync"
	"time"
)

// BayUpdate is pushed whenever a bay's cached availability flag changes,
// from the booking path, the cancellation path, or the sweeper.
type BayUpdate struct {
	BayID       uint  `json:"bay_id"`
	CarParkID   uint  `json:"carpark_id"`
	IsAvailable bool  `json:"is_available"`
	UpdatedAt   int64 `json:"updated_at"`
}

// Client represents a single WebSocket connection.
type Client struct {
	UserID uint
	Send   chan []byte
	hub    *Hub
	mu     sync.Mutex
	closed bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// Hub maintains the set of live-availability subscribers and the last known
// state per bay, so new subscribers get a snapshot on connect.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	latest  map[uint]BayUpdate
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		latest:  make(map[uint]BayUpdate),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// BayChanged records the new flag and fans it out to all subscribers.
// Slow subscribers are skipped rather than blocking the caller.
func (h *Hub) BayChanged(bayID, carparkID uint, available bool) {
	update := BayUpdate{
		BayID:       bayID,
		CarParkID:   carparkID,
		IsAvailable: available,
		UpdatedAt:   time.Now().Unix(),
	}
	data, _ := json.Marshal(update)
	h.mu.Lock()
	h.latest[bayID] = update
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// Snapshot returns the last known update per bay for initial load.
func (h *Hub) Snapshot() []BayUpdate {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]BayUpdate, 0, len(h.latest))
	for _, u := range h.latest {
		out = append(out, u)
	}
	return out
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
