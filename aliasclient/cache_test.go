package aliasclient

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	t.Run("given empty cache, then miss", func(t *testing.T) {
		c := NewMemoryCache()
		_, ok := c.Get("reports/q")
		assert.False(t, ok)
		assert.Zero(t, c.Len())
	})

	t.Run("given set entry, then get returns it", func(t *testing.T) {
		c := NewMemoryCache()
		rec := AliasRecord{ID: "a1", Path: "/a/a1", Target: "reports/q"}
		c.Set("reports/q", rec)

		got, ok := c.Get("reports/q")
		assert.True(t, ok)
		assert.Equal(t, rec, got)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("given second set for same target, then last writer wins", func(t *testing.T) {
		c := NewMemoryCache()
		c.Set("reports/q", AliasRecord{ID: "a1", Path: "/a/a1"})
		c.Set("reports/q", AliasRecord{ID: "a2", Path: "/a/a2"})

		got, _ := c.Get("reports/q")
		assert.Equal(t, "a2", got.ID)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("given delete, then entry removed", func(t *testing.T) {
		c := NewMemoryCache()
		c.Set("reports/q", AliasRecord{ID: "a1"})
		c.Delete("reports/q")

		_, ok := c.Get("reports/q")
		assert.False(t, ok)
	})

	t.Run("given concurrent access, then no race", func(t *testing.T) {
		c := NewMemoryCache()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("path/%d", i%5)
				c.Set(key, AliasRecord{ID: fmt.Sprintf("a%d", i)})
				c.Get(key)
				c.Delete(key)
			}(i)
		}
		wg.Wait()
	})
}
