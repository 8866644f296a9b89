package notify

import (
	"context"
	"sync"
)

// MemoryHub is an in-process Publisher with channel subscribers. It backs
// broker-less deployments and tests. Fan-out is at-most-once: a subscriber
// whose buffer is full drops the event instead of blocking the publisher.
type MemoryHub struct {
	mu   sync.RWMutex
	subs map[Topic][]chan Event
}

// NewMemoryHub constructs an empty in-memory hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[Topic][]chan Event)}
}

// Subscribe returns a buffered channel receiving events published to topic
// and a cancel function that removes the subscription.
func (h *MemoryHub) Subscribe(topic Topic) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[topic] = append(h.subs[topic], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subs[topic]
		for i, s := range subs {
			if s == ch {
				h.subs[topic] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Publish delivers the event to every live subscriber of the topic.
func (h *MemoryHub) Publish(_ context.Context, topic Topic, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[topic] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}
