package fenris

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is the bounded path->bytes LRU that fronts disk reads (§4.6).
// It wraps hashicorp/golang-lru/v2, whose internal simplelru already
// keeps a map plus a recency list with splice-to-head-on-hit and
// pop-tail-on-evict -- exactly the structure §4.6 specifies -- so
// Cache itself only needs to add the copy-on-read semantics ("get must
// not return a reference that outlives the lock") and the coherence
// rule that writers invalidate/replace before releasing a node's
// mutex.
//
// The teacher (mars9-ramfs) has no cache of its own: 9P clients cache
// file blocks themselves. This component is new domain surface §4.6
// requires, grounded on moby-moby's go.mod dependency on
// hashicorp/golang-lru/v2 rather than hand-rolled, since the pack
// already carries a production LRU.
type Cache struct {
	mu    sync.Mutex
	inner *lru.Cache[string, []byte]
}

// NewCache creates a cache bounded at maxEntries (§4.6's max_entries).
func NewCache(maxEntries int) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	inner, err := lru.New[string, []byte](maxEntries)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Get returns a copy of the cached bytes for path, moving the entry to
// MRU on a hit. The returned slice is independent of the cache's
// internal storage so it outlives the lock safely.
func (c *Cache) Get(path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.inner.Get(path)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

// Put inserts or replaces path's cached bytes, evicting the LRU entry
// first if inserting a new key at capacity. Per the coherence rule,
// every write path that mutates disk for `path` must call Put or
// Invalidate before releasing that path's node mutex.
func (c *Cache) Put(path string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	c.inner.Add(path, stored)
}

// Invalidate removes path's entry if present. Every delete must call
// this.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Remove(path)
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Purge()
}

// Size returns the current number of cached entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}
