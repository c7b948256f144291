package accent

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// resultCache is an lru.Cache of input → normalized text, safe for
// concurrent use.
type resultCache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

func newResultCache(size int) *resultCache {
	return &resultCache{lru: lru.New(size)}
}

func (c *resultCache) get(s string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lru.Get(s); ok {
		return v.(string), true
	}
	return "", false
}

func (c *resultCache) add(s, res string) {
	c.mu.Lock()
	c.lru.Add(s, res)
	c.mu.Unlock()
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
