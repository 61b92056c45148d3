package live

import (
	"sync"

	"github.com/google/uuid"
)

// Hub tracks listeners keyed by table name and wakes them after a commit
// touched one of their tables.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]map[string]chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		listeners: make(map[string]map[string]chan struct{}),
	}
}

// Register adds a listener for the given tables. The returned channel receives
// at most one pending wake-up; wake-ups that arrive while one is pending are
// merged into it.
func (h *Hub) Register(tables ...string) (string, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan struct{}, 1)
	for _, table := range tables {
		if h.listeners[table] == nil {
			h.listeners[table] = make(map[string]chan struct{})
		}
		h.listeners[table][id] = ch
	}
	return id, ch
}

// Unregister removes the listener with the given id from every table.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for table, ls := range h.listeners {
		delete(ls, id)
		if len(ls) == 0 {
			delete(h.listeners, table)
		}
	}
}

// Publish wakes every listener of the given tables. It never blocks.
func (h *Hub) Publish(tables ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, table := range tables {
		for _, ch := range h.listeners[table] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// Listeners returns the number of listeners registered for table.
func (h *Hub) Listeners(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[table])
}
