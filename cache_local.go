package sqlboost

import (
	"context"
	"time"

	"github.com/sqlboost/sqlboost/cache"
)

const localCacheCap = 100

// localStore is the in-process fallback used when the host provides no
// external cache. Bounded at a fixed number of entries with
// oldest-inserted-first eviction; expiry is checked on read. It is scoped
// to one access-layer instance and, like the rest of the layer, assumes
// non-concurrent access.
type localStore struct {
	cap     int
	entries map[string]*localEntry
	order   []string
	now     func() time.Time
}

type localEntry struct {
	item      *cache.Item
	expiresAt time.Time
}

func newLocalStore(capacity int) *localStore {
	return &localStore{
		cap:     capacity,
		entries: make(map[string]*localEntry),
		now:     time.Now,
	}
}

// Get implements cache.Cacher. A miss or an expired entry is (nil, false,
// nil); absence is never an error.
func (l *localStore) Get(_ context.Context, key string) (*cache.Item, bool, error) {
	e, ok := l.entries[key]
	if !ok {
		return nil, false, nil
	}
	if l.now().After(e.expiresAt) {
		delete(l.entries, key)
		return nil, false, nil
	}
	return e.item, true, nil
}

// Set implements cache.Cacher.
func (l *localStore) Set(_ context.Context, key string, item *cache.Item, ttl time.Duration) error {
	if _, ok := l.entries[key]; !ok {
		l.order = append(l.order, key)
	}
	l.entries[key] = &localEntry{item: item, expiresAt: l.now().Add(ttl)}

	for len(l.order) > l.cap {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.entries, oldest)
	}
	return nil
}

// Flush implements cache.Flusher by dropping every entry.
func (l *localStore) Flush(_ context.Context) error {
	l.entries = make(map[string]*localEntry)
	l.order = nil
	return nil
}
