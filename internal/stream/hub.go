// Package stream fans fresh query snapshots out to live subscribers
// (server-sent event streams and anything else watching for updates).
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mmquake/quake-watch/internal/models"
)

// Snapshot is one published refresh of a rolling period.
type Snapshot struct {
	Period string
	Result *models.QueryResult
}

type Hub struct {
	subscribers map[uint64]chan Snapshot
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uint64]chan Snapshot),
	}
}

func (h *Hub) Subscribe() (uint64, chan Snapshot) {
	id := h.nextID.Add(1)
	ch := make(chan Snapshot, 8) // one slot per tracked period is plenty

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	return id, ch
}

func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(s Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- s:
		default:
			// Skip slow subscribers
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
}
