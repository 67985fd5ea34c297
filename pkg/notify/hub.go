package notify

import (
	"context"
	"sync"
	"time"
)

// Hub broadcasts notifications to in-process subscribers such as SSE
// streams. A subscriber that falls behind loses notifications instead of
// stalling the publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[chan Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan Notification]struct{})}
}

func (h *Hub) Subscribe() chan Notification {
	ch := make(chan Notification, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan Notification) {
	h.mu.Lock()
	_, ok := h.clients[ch]
	delete(h.clients, ch)
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Subscribers is the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Notify(_ context.Context, n Notification) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- n:
		default:
			// drop if slow
		}
	}
}

// Close ends every subscription. Subscribers see their channel closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}
