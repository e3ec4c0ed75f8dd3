package activity

import (
	"slices"
	"sync"
)

// DefaultHistoryLimit bounds a History created with a non-positive limit.
const DefaultHistoryLimit = 500

// History keeps the most recent entries in memory, oldest first.
type History struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
}

// NewHistory creates a history holding at most limit entries.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Add appends an entry, dropping the oldest when full.
func (h *History) Add(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == h.limit {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, e)
}

// Recent returns up to n of the newest entries, newest last. n <= 0
// returns everything held.
func (h *History) Recent(n int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	start := 0
	if n > 0 && n < len(h.entries) {
		start = len(h.entries) - n
	}
	out := make([]Entry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// ForDevice returns up to n of the newest entries for one device, newest
// last. n <= 0 returns all of them.
func (h *History) ForDevice(name string, n int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []Entry
	for i := len(h.entries) - 1; i >= 0 && (n <= 0 || len(out) < n); i-- {
		if h.entries[i].Device == name {
			out = append(out, h.entries[i])
		}
	}
	slices.Reverse(out)
	return out
}

// Limit returns the maximum number of entries held.
func (h *History) Limit() int {
	return h.limit
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
