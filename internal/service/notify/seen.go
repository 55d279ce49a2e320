package notify

import "sync"

// SeenPayloads is the append-only history of accepted payloads for the session.
// Each payload appears once, in the order it was first accepted.
type SeenPayloads struct {
	mu    sync.RWMutex
	set   map[string]struct{}
	order []string
}

// NewSeenPayloads creates an empty history.
func NewSeenPayloads() *SeenPayloads {
	return &SeenPayloads{set: make(map[string]struct{})}
}

// Add records payload and reports whether it was new.
func (s *SeenPayloads) Add(payload string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.set[payload]; ok {
		return false
	}
	s.set[payload] = struct{}{}
	s.order = append(s.order, payload)
	return true
}

// Contains reports whether payload was accepted before.
func (s *SeenPayloads) Contains(payload string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[payload]
	return ok
}

// List returns a copy of the history in accept order.
func (s *SeenPayloads) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]string, len(s.order))
	copy(list, s.order)
	return list
}

// Len returns the number of distinct accepted payloads.
func (s *SeenPayloads) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
