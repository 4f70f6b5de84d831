package server

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aetheroos/aethero/internal/asl"
)

// Hub tracks live WebSocket connections by session id and which
// ministers each session subscribes to.
type Hub struct {
	mu            sync.Mutex
	conns         map[string]*websocket.Conn
	lastSeen      map[string]time.Time
	subscriptions map[asl.Minister]map[string]bool
}

func NewHub() *Hub {
	return &Hub{
		conns:         make(map[string]*websocket.Conn),
		lastSeen:      make(map[string]time.Time),
		subscriptions: make(map[asl.Minister]map[string]bool),
	}
}

// Add registers a connection under its session id. A connection
// already registered for that session is closed and replaced.
func (h *Hub) Add(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.conns[sessionID]; ok {
		old.Close()
	}
	h.conns[sessionID] = conn
	h.lastSeen[sessionID] = time.Now().UTC()
}

// Remove drops a session's connection and subscriptions. A connection
// other than conn registered under the same session is left alone.
func (h *Hub) Remove(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.conns[sessionID]; ok && cur == conn {
		delete(h.conns, sessionID)
		delete(h.lastSeen, sessionID)
		for _, subs := range h.subscriptions {
			delete(subs, sessionID)
		}
	}
}

// Touch records activity for a session's connection.
func (h *Hub) Touch(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[sessionID]; ok {
		h.lastSeen[sessionID] = time.Now().UTC()
	}
}

// Sessions returns a snapshot of connected sessions and their last
// activity time.
func (h *Hub) Sessions() map[string]time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]time.Time, len(h.lastSeen))
	for id, t := range h.lastSeen {
		out[id] = t
	}
	return out
}

// Subscribe registers a session for a minister's events.
func (h *Hub) Subscribe(sessionID string, minister asl.Minister) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscriptions[minister] == nil {
		h.subscriptions[minister] = make(map[string]bool)
	}
	h.subscriptions[minister][sessionID] = true
}

// ConnectionCount reports the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast sends an event to every connection. Connections that fail
// to write are dropped.
func (h *Hub) Broadcast(event string, payload any) {
	h.send(event, payload, nil)
}

// BroadcastMinister sends an event only to sessions subscribed to the
// given minister.
func (h *Hub) BroadcastMinister(minister asl.Minister, event string, payload any) {
	h.mu.Lock()
	subs := h.subscriptions[minister]
	targets := make(map[string]bool, len(subs))
	for id := range subs {
		targets[id] = true
	}
	h.mu.Unlock()
	h.send(event, payload, targets)
}

func (h *Hub) send(event string, payload any, only map[string]bool) {
	msg := map[string]any{"type": event, "payload": payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	var dead []string
	for sessionID, conn := range h.conns {
		if only != nil && !only[sessionID] {
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("server: broadcast to %s failed: %v", sessionID, err)
			conn.Close()
			dead = append(dead, sessionID)
		}
	}
	for _, id := range dead {
		delete(h.conns, id)
		delete(h.lastSeen, id)
		for _, subs := range h.subscriptions {
			delete(subs, id)
		}
	}
}

// CloseAll closes every connection and clears the registry.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.conns {
		conn.Close()
		delete(h.conns, id)
	}
	h.lastSeen = make(map[string]time.Time)
	h.subscriptions = make(map[asl.Minister]map[string]bool)
}
