package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"guildcache/internal/observability"
)

// Hub keeps track of open stream connections keyed by user ID so they can be
// counted and closed together on shutdown.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Register adds a connection for the given user.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
	observability.LiveStreams.Inc()
}

// Unregister removes a connection for the given user.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[userID]; ok {
		if _, ok := conns[conn]; !ok {
			return
		}
		delete(conns, conn)
		observability.LiveStreams.Dec()
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Count returns the number of open connections of userID.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// CloseAll sends a going-away close frame to every connection and closes it.
// The stream handlers unregister them as their read loops fail.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, conns := range h.conns {
		for conn := range conns {
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline())
			conn.Close()
		}
	}
}
