package search

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zhycn/batool/internal/catalog"
)

// Cached memoizes an Index by exact query string. A cache lives exactly as
// long as the index it wraps, so rebuilding the index invalidates it.
type Cached struct {
	inner  Index
	cache  *lru.Cache[string, []catalog.Item]
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCached(inner Index, size int) (*Cached, error) {
	c, err := lru.New[string, []catalog.Item](size)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &Cached{inner: inner, cache: c}, nil
}

func (c *Cached) Search(query string) []catalog.Item {
	if res, ok := c.cache.Get(query); ok {
		c.hits.Add(1)
		return res
	}
	c.misses.Add(1)
	res := c.inner.Search(query)
	c.cache.Add(query, res)
	return res
}

func (c *Cached) DocCount() int {
	if dc, ok := c.inner.(DocCounter); ok {
		return dc.DocCount()
	}
	return 0
}

// Stats reports cache hits and misses since construction.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
