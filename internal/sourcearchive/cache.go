package sourcearchive

import "container/list"

// lineCache is a fixed-capacity LRU of decoded line slices keyed by archive
// entry name. Large source files get hit once per flow step, so re-decoding
// them for every lookup would dominate extraction time.
type lineCache struct {
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

type lineCacheEntry struct {
	key   string
	lines []string
}

func newLineCache(capacity int) *lineCache {
	if capacity < 1 {
		capacity = 1
	}
	return &lineCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *lineCache) get(key string) ([]string, bool) {
	element, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*lineCacheEntry).lines, true
}

func (c *lineCache) put(key string, lines []string) {
	if element, ok := c.items[key]; ok {
		c.order.MoveToFront(element)
		element.Value.(*lineCacheEntry).lines = lines
		return
	}

	c.items[key] = c.order.PushFront(&lineCacheEntry{key: key, lines: lines})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lineCacheEntry).key)
	}
}

func (c *lineCache) len() int {
	return c.order.Len()
}
