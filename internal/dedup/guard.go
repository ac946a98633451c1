// Package dedup prevents redundant scans of the same URL within one
// session.
package dedup

import "sync"

// Guard tracks claimed URLs. The claim is taken inside ShouldScan itself
// so two near-simultaneous observations of the same URL can never both
// pass.
type Guard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{seen: make(map[string]struct{})}
}

// ShouldScan returns true exactly once per URL per session and records
// the claim as a side effect.
func (g *Guard) ShouldScan(url string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[url]; ok {
		return false
	}
	g.seen[url] = struct{}{}
	return true
}

// Seen returns how many distinct URLs have been claimed.
func (g *Guard) Seen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// Reset clears all claims.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen = make(map[string]struct{})
}
