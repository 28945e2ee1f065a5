// Package broadcast provides the in-process fan-out hub that carries
// session events to live WebSocket and SSE subscribers.
package broadcast

import (
	"sync"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/ports"
)

// subscriberBuffer is the per-subscriber channel depth. Publishers never
// block; a subscriber that falls this far behind starts losing events.
const subscriberBuffer = 100

// Hub is an in-process broadcast hub keyed by session ID.
// Thread-safe for concurrent publish/subscribe operations.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int]chan domain.ServerMessage
	nextID int
	closed bool
}

// Verify interface compliance at compile time
var _ ports.EventHub = (*Hub)(nil)

// NewHub creates a new broadcast hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[int]chan domain.ServerMessage),
	}
}

// Subscribe attaches a consumer to a session's event feed and returns
// the receive channel plus an unsubscribe function. The channel is
// buffered so publishers are never blocked by a slow consumer.
func (h *Hub) Subscribe(sessionID string) (<-chan domain.ServerMessage, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		ch := make(chan domain.ServerMessage)
		close(ch)
		return ch, func() {}
	}

	h.nextID++
	id := h.nextID
	ch := make(chan domain.ServerMessage, subscriberBuffer)

	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]chan domain.ServerMessage)
	}
	h.subs[sessionID][id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		sessionSubs, ok := h.subs[sessionID]
		if !ok {
			return
		}
		if ch, ok := sessionSubs[id]; ok {
			close(ch)
			delete(sessionSubs, id)
		}
		if len(sessionSubs) == 0 {
			delete(h.subs, sessionID)
		}
	}
}

// Broadcast sends msg to every live subscriber of the session.
// Non-blocking: if a subscriber's channel is full, the message is
// dropped for that subscriber.
func (h *Hub) Broadcast(sessionID string, msg domain.ServerMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for _, ch := range h.subs[sessionID] {
		select {
		case ch <- msg:
			// Delivered
		default:
			// Channel full, drop for this subscriber
		}
	}
}

// SubscriberCount returns the number of live subscribers for a session
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Close shuts down the hub and closes all subscriber channels
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.closed = true
	for sessionID, sessionSubs := range h.subs {
		for id, ch := range sessionSubs {
			close(ch)
			delete(sessionSubs, id)
		}
		delete(h.subs, sessionID)
	}
}
