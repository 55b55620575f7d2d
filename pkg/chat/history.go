package chat

import (
	"sync"

	"streamrelay/pkg/models"
)

// History keeps the most recent chat events in memory so newly attached
// connections can catch up. It is a replay cache, not the source of truth;
// the durable record lives in Postgres.
type History struct {
	mu       sync.RWMutex
	events   []*models.ChatEvent
	capacity int
}

// NewHistory creates a buffer that retains up to capacity events.
func NewHistory(capacity int) *History {
	return &History{capacity: capacity}
}

// Append adds an event at the tail, evicting the oldest entries once the
// buffer exceeds its capacity.
func (h *History) Append(evt *models.ChatEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, evt)
	if len(h.events) > h.capacity {
		h.events = h.events[len(h.events)-h.capacity:]
	}
}

// Snapshot returns a copy of the current contents, oldest-first.
func (h *History) Snapshot() []*models.ChatEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*models.ChatEvent, len(h.events))
	copy(out, h.events)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}
