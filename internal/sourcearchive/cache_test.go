package sourcearchive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := newLineCache(2)
	cache.put("a", []string{"a1"})
	cache.put("b", []string{"b1"})

	// touch "a" so "b" becomes the eviction candidate
	_, ok := cache.get("a")
	assert.True(t, ok)

	cache.put("c", []string{"c1"})
	assert.Equal(t, 2, cache.len())

	_, ok = cache.get("b")
	assert.False(t, ok)
	lines, ok := cache.get("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"a1"}, lines)
}

func TestLineCacheUpdateExistingKey(t *testing.T) {
	cache := newLineCache(2)
	cache.put("a", []string{"old"})
	cache.put("a", []string{"new"})
	assert.Equal(t, 1, cache.len())

	lines, ok := cache.get("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"new"}, lines)
}

func TestLineCacheBoundedGrowth(t *testing.T) {
	cache := newLineCache(16)
	for i := 0; i < 100; i++ {
		cache.put(fmt.Sprintf("k%d", i), []string{"x"})
	}
	assert.Equal(t, 16, cache.len())
}
