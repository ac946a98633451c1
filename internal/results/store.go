// Package results is the in-memory results view: an append-only,
// insertion-ordered list of every terminal pipeline outcome.
package results

import (
	"sync"

	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

// Store accepts concurrent Record calls from in-flight pipeline runs.
// Order is completion order, not discovery order.
type Store struct {
	mu      sync.Mutex
	results []schema.ScanResult
}

func NewStore() *Store { return &Store{} }

// Record appends one terminal result. Every status lands here so no run
// fails silently.
func (s *Store) Record(res schema.ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
}

// List returns a copy of the recorded results in insertion order.
func (s *Store) List() []schema.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schema.ScanResult, len(s.results))
	copy(out, s.results)
	return out
}

// Len reports how many results have been recorded.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Clear drops all recorded results.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
}
