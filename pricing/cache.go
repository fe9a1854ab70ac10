package pricing

import (
	"context"
	"sync"
)

// Cache is a read-through memoization layer over a Source. It is safe
// for concurrent use; queries are immutable facts, so a cached entry
// never needs invalidation within one analysis.
type Cache struct {
	source Source

	mu      sync.RWMutex
	entries map[Query]UnitPrice
}

// NewCache wraps a source with an in-memory cache.
func NewCache(source Source) *Cache {
	return &Cache{
		source:  source,
		entries: make(map[Query]UnitPrice),
	}
}

// GetUnitPrice returns the cached price for the query, populating the
// cache from the underlying source on a miss. Lookup failures are not
// cached: a missing rate may appear after a pricing refresh.
func (c *Cache) GetUnitPrice(ctx context.Context, q Query) (UnitPrice, error) {
	c.mu.RLock()
	price, ok := c.entries[q]
	c.mu.RUnlock()
	if ok {
		return price, nil
	}

	price, err := c.source.GetUnitPrice(ctx, q)
	if err != nil {
		return UnitPrice{}, err
	}

	c.mu.Lock()
	c.entries[q] = price
	c.mu.Unlock()
	return price, nil
}

// Len reports the number of cached rates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
