// Package cache abstracts the backend key/value store used by sqlboost.
// Backends are treated as opaque, possibly multi-writer services; sqlboost
// assumes no read-after-write consistency beyond what the store provides.
package cache

import (
	"context"
	"time"
)

// Item is the result bundle stored for a single query: the rows it
// produced plus the execution counters. Items are read-only once stored.
type Item struct {
	Kind         int             `msgpack:"t"`
	Cols         []string        `msgpack:"c"`
	Rows         [][]interface{} `msgpack:"r"`
	RowCount     int             `msgpack:"n"`
	Affected     int64           `msgpack:"a"`
	LastInsertID int64           `msgpack:"i"`
	OK           bool            `msgpack:"k"`
}

// Cacher is the minimal surface a backend cache must provide.
type Cacher interface {
	// Get must return a pointer to the item, a boolean representing
	// whether the item is present, and an error (must be nil when the
	// key is simply absent; a miss is not a failure).
	Get(ctx context.Context, key string) (*Item, bool, error)
	// Set stores the item under key with the given TTL. Expiry is
	// enforced by the backend.
	Set(ctx context.Context, key string, item *Item, ttl time.Duration) error
}

// Flusher is implemented by backends that can drop every sqlboost entry in
// one group-level operation.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Deleter is implemented by backends that can only remove entries key by
// key; callers track the keys they stored and hand them back here.
type Deleter interface {
	Del(ctx context.Context, keys ...string) error
}
