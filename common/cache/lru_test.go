package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU(t *testing.T) {
	t.Parallel()
	c := NewLRUCache[string, []int](2)
	c.Add("a", []int{1})
	c.Add("b", []int{2})
	v, ok := c.Get("a")
	assert.True(t, ok, "a should be cached")
	assert.Equal(t, []int{1}, v)

	c.Add("c", []int{3})
	assert.False(t, c.Contains("b"), "b should be evicted as least recently used")
	assert.True(t, c.Contains("a"))
	assert.Equal(t, 2, c.Len())

	c.Add("a", []int{4})
	v, _ = c.Get("a")
	assert.Equal(t, []int{4}, v, "Add should update an existing key")

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	_, ok = c.Get("a")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestLRUMinimumCapacity(t *testing.T) {
	t.Parallel()
	c := NewLRUCache[int, int](0)
	assert.Equal(t, 1, c.Cap)
	c.Add(1, 1)
	c.Add(2, 2)
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Contains(2))
}

func TestLRUConcurrentAccess(t *testing.T) {
	t.Parallel()
	c := NewLRUCache[int, int](8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Add(i%10, i)
			c.Get(i % 10)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 8)
}
