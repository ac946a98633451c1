package results

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

func TestStore_InsertionOrder(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.Record(schema.ScanResult{ID: fmt.Sprintf("r%d", i), Status: schema.StatusSuccess})
	}

	list := s.List()
	require.Len(t, list, 5)
	for i, res := range list {
		assert.Equal(t, fmt.Sprintf("r%d", i), res.ID)
	}
}

func TestStore_ConcurrentRecordLosesNothing(t *testing.T) {
	s := NewStore()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.Record(schema.ScanResult{ID: fmt.Sprintf("r%d", id)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, s.Len())

	seen := make(map[string]struct{})
	for _, res := range s.List() {
		seen[res.ID] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestStore_ListReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Record(schema.ScanResult{ID: "a"})

	list := s.List()
	list[0].ID = "mutated"

	assert.Equal(t, "a", s.List()[0].ID)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Record(schema.ScanResult{ID: "a"})
	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.List())
}
