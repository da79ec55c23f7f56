package synonym

import (
	"sync/atomic"
)

// Handle holds the current compiled map and swaps it atomically. Get is
// lock-free and allocation-free; Swap is the single mutation point for the
// slot. Readers never observe a partially built map because a Map is fully
// constructed before the pointer is published.
type Handle struct {
	current atomic.Pointer[Map]
}

// NewHandle creates a handle serving the given initial map, or the empty
// map if initial is nil.
func NewHandle(initial *Map) *Handle {
	h := &Handle{}
	if initial == nil {
		initial = Empty()
	}
	h.current.Store(initial)
	return h
}

// Get returns the currently served map. It never returns nil and never
// blocks on an in-progress Swap.
func (h *Handle) Get() *Map {
	return h.current.Load()
}

// Swap atomically replaces the current map and returns the superseded one.
// The old map stays valid for any reader that loaded it before the swap.
// Concurrent swaps serialize at the pointer; the last completed swap wins.
// A nil argument swaps in the empty map.
func (h *Handle) Swap(m *Map) *Map {
	if m == nil {
		m = Empty()
	}
	return h.current.Swap(m)
}
