// Package projection builds read-only views over routed messages.
// Handles bounded retention and snapshots for late readers.
// Does not emit events or interact with transports directly.
package projection

import (
	"sync"

	"chat-hub/domain"
)

// DefaultCapacity mirrors the retention the hub ships with.
const DefaultCapacity = 100

// History is the bounded record of recent global and room messages.
// Eviction is strict FIFO on message count; private messages are
// never appended here.
type History struct {
	mu       sync.RWMutex
	capacity int
	messages []domain.Message
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Append records a message, evicting the oldest one when full.
func (h *History) Append(m domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, m)
	if len(h.messages) > h.capacity {
		h.messages = h.messages[len(h.messages)-h.capacity:]
	}
}

// Recent returns a snapshot of the retained messages, oldest first.
func (h *History) Recent() []domain.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len reports how many messages are currently retained.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}
