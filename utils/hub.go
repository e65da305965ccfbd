package utils

import (
	"sync"
)

// PushPayload is the real-time event delivered on a recipient's channel.
// Clients route it to the right inbox tab, then re-fetch canonical data;
// the payload itself is not ground truth.
type PushPayload struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Tab     string `json:"tab"`
}

// PushConn is the subset of a websocket connection the hub needs.
// *websocket.Conn satisfies it.
type PushConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub tracks live websocket connections per user and fans pushes out to
// them. It is constructed once in main and injected wherever pushes are
// needed; earlier revisions reached a process-global socket server instead.
type Hub struct {
	mu    sync.RWMutex
	conns map[uint]map[PushConn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[PushConn]struct{})}
}

// Register adds a connection to userID's channel.
func (h *Hub) Register(userID uint, conn PushConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[PushConn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

// Unregister removes a connection from userID's channel.
func (h *Hub) Unregister(userID uint, conn PushConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[userID], conn)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// Push delivers payload to every live connection of userID. At-most-once,
// fire-and-forget: a recipient with no connection is skipped and a failed
// write drops the connection.
func (h *Hub) Push(userID uint, payload PushPayload) {
	h.mu.RLock()
	targets := make([]PushConn, 0, len(h.conns[userID]))
	for conn := range h.conns[userID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteJSON(payload); err != nil {
			LogEvent("push_dropped", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
			h.Unregister(userID, conn)
			_ = conn.Close()
		}
	}
}

// Connections reports how many live connections userID has.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
