package rank

import (
	"math"

	"github.com/charmbracelet/log"
)

// defaultCacheSize bounds the number of cached Top results.
const defaultCacheSize = 32

type topKey struct {
	prefix string
	k      int
}

type cachedTop struct {
	entries  []Entry
	lastUsed int64
}

// topCache keeps recent Top/TopPrefix results until the counts change.
// It evicts the least recently used result when full.
type topCache struct {
	results    map[topKey]*cachedTop
	clock      int64
	maxResults int
	hits       int
	misses     int
}

func newTopCache(maxResults int) *topCache {
	return &topCache{
		results:    make(map[topKey]*cachedTop, maxResults),
		maxResults: maxResults,
	}
}

func (c *topCache) get(prefix string, k int) ([]Entry, bool) {
	cached, ok := c.results[topKey{prefix, k}]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	cached.lastUsed = c.tick()
	return cloneEntries(cached.entries), true
}

func (c *topCache) put(prefix string, k int, entries []Entry) {
	if c.maxResults <= 0 {
		return
	}
	key := topKey{prefix, k}
	if _, exists := c.results[key]; !exists && len(c.results) >= c.maxResults {
		c.evictLRU()
	}
	c.results[key] = &cachedTop{
		entries:  cloneEntries(entries),
		lastUsed: c.tick(),
	}
}

// invalidate drops every result; hit and miss counters survive.
func (c *topCache) invalidate() {
	if len(c.results) > 0 {
		clear(c.results)
	}
}

func (c *topCache) tick() int64 {
	c.clock++
	return c.clock
}

func (c *topCache) evictLRU() {
	var oldest topKey
	oldestTime := int64(math.MaxInt64)
	for key, cached := range c.results {
		if cached.lastUsed < oldestTime {
			oldestTime = cached.lastUsed
			oldest = key
		}
	}
	delete(c.results, oldest)
	log.Debugf("Evicted top(%q, %d) from cache", oldest.prefix, oldest.k)
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
