package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Key   string
	Event string
	Data  interface{}
}

// Hub fans events out to subscribers by key. A subscriber may listen on
// several keys at once, for example its own employee key and its role key.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers one channel under every key and returns it with a cleanup function.
func (h *Hub) Subscribe(keys ...string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	for _, key := range keys {
		if h.subscribers[key] == nil {
			h.subscribers[key] = make(map[chan Event]struct{})
		}
		h.subscribers[key][ch] = struct{}{}
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, key := range keys {
				delete(h.subscribers[key], ch)
				if len(h.subscribers[key]) == 0 {
					delete(h.subscribers, key)
				}
			}
			close(ch)
		})
	}

	return ch, cleanup
}

// Publish sends an event to every subscriber of any of the keys. A subscriber
// registered under several of the keys receives the event once.
func (h *Hub) Publish(keys []string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := make(map[chan Event]struct{})
	for _, key := range keys {
		for ch := range h.subscribers[key] {
			if _, dup := sent[ch]; dup {
				continue
			}
			sent[ch] = struct{}{}
			ev := event
			ev.Key = key
			select {
			case ch <- ev:
			default:
				// slow consumer, drop rather than block the publisher
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers for a key
func (h *Hub) SubscriberCount(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[key])
}
