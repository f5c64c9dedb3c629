package sqlboost

import (
	"context"
	"fmt"
	"time"

	"github.com/sqlboost/sqlboost/cache"

	"github.com/dgraph-io/ristretto"
)

// Ristretto implements cache.Cacher on top of an in-process ristretto
// cache for hosts that want admission and eviction smarter than the
// bounded fallback store but no external service.
type Ristretto struct {
	c *ristretto.Cache
}

// NewRistretto wraps the provided ristretto cache. The number of rows in
// each item is used as its cost, so size the cache's MaxCost in rows.
func NewRistretto(c *ristretto.Cache) *Ristretto {
	return &Ristretto{
		c: c,
	}
}

// Get gets a cache item from ristretto. Returns a pointer to the item, a
// boolean representing whether the key exists, and an error.
func (r *Ristretto) Get(_ context.Context, key string) (*cache.Item, bool, error) {
	i, ok := r.c.Get(key)
	if !ok {
		return nil, false, nil
	}

	item, ok := i.(*cache.Item)
	if !ok {
		return nil, false, fmt.Errorf("Ristretto.Get(): i.(*cache.Item) failed")
	}

	return item, true, nil
}

// Set sets the given item into ristretto with the provided TTL duration.
func (r *Ristretto) Set(_ context.Context, key string, item *cache.Item, ttl time.Duration) error {
	// using # of rows as cost
	_ = r.c.SetWithTTL(key, item, int64(len(item.Rows)), ttl)
	return nil
}

// Flush implements cache.Flusher by clearing the whole ristretto cache.
func (r *Ristretto) Flush(_ context.Context) error {
	r.c.Clear()
	return nil
}
