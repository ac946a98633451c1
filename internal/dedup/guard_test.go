package dedup

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldScan_TrueExactlyOnce(t *testing.T) {
	g := NewGuard()
	assert.True(t, g.ShouldScan("https://x/a.js"))
	assert.False(t, g.ShouldScan("https://x/a.js"))
	assert.True(t, g.ShouldScan("https://x/b.js"))
	assert.Equal(t, 2, g.Seen())
}

func TestShouldScan_ConcurrentSingleClaim(t *testing.T) {
	g := NewGuard()

	const goroutines = 64
	var claims atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.ShouldScan("https://x/a.js") {
				claims.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), claims.Load())
}

func TestShouldScan_ConcurrentDistinctURLs(t *testing.T) {
	g := NewGuard()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			g.ShouldScan(fmt.Sprintf("https://x/%d.js", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, g.Seen())
}

func TestReset(t *testing.T) {
	g := NewGuard()
	g.ShouldScan("https://x/a.js")
	g.Reset()
	assert.Equal(t, 0, g.Seen())
	assert.True(t, g.ShouldScan("https://x/a.js"))
}
