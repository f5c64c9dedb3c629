package sqlboost

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/ngrok/sqlmw"

	"github.com/sqlboost/sqlboost/cache"
)

type readOnlyKey struct{}

// WithReadOnly marks ctx as a cache-eligible, read-only surface. The
// driver-level interceptor only serves or stores cache entries for
// queries issued under such a context; everything else goes straight to
// the database.
func WithReadOnly(ctx context.Context) context.Context {
	return context.WithValue(ctx, readOnlyKey{}, true)
}

func readOnlyFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(readOnlyKey{}).(bool)
	return v
}

// InterceptorConfig is the configuration passed to NewInterceptor.
type InterceptorConfig struct {
	// Cache must be set to a type that implements the cache.Cacher
	// interface. Required.
	Cache cache.Cacher
	// TTL for stored entries; DefaultTTL when zero.
	TTL time.Duration
	// MaxRows caps how many rows of a single query are recorded; a query
	// producing more is not cached. Default 100.
	MaxRows int
	// OnError is called whenever the cache backend or the hash function
	// fails. The interceptor never logs on its own.
	OnError func(error)
	// HashFunc can optionally replace the default key derivation.
	HashFunc func(query string, args []driver.NamedValue) (string, error)
}

// Interceptor is an ngrok/sqlmw interceptor that gives hosts on plain
// database/sql a read-through cache with the same classification as Shim:
// SELECT statements free of volatile constructs, issued under a context
// marked with WithReadOnly.
type Interceptor struct {
	c        cache.Cacher
	ttl      time.Duration
	maxRows  int
	hashFunc func(query string, args []driver.NamedValue) (string, error)
	onErr    func(error)
	stats    Stats
	disabled bool
	sqlmw.NullInterceptor
}

// NewInterceptor returns a new interceptor initialised with the provided
// config.
func NewInterceptor(config *InterceptorConfig) (*Interceptor, error) {
	if config == nil {
		return nil, fmt.Errorf("config can't be nil")
	}
	if config.Cache == nil {
		return nil, fmt.Errorf("cache must be set in Config")
	}

	i := &Interceptor{
		c:        config.Cache,
		ttl:      config.TTL,
		maxRows:  config.MaxRows,
		hashFunc: config.HashFunc,
		onErr:    config.OnError,
	}
	if i.ttl == 0 {
		i.ttl = DefaultTTL
	}
	if i.maxRows == 0 {
		i.maxRows = localCacheCap
	}
	if i.hashFunc == nil {
		i.hashFunc = driverCacheKey
	}
	return i, nil
}

// Driver wraps d so that queries pass through the interceptor.
func (i *Interceptor) Driver(d driver.Driver) driver.Driver {
	return sqlmw.Driver(d, i)
}

// Enable enables the interceptor. Instances are enabled on creation.
func (i *Interceptor) Enable() {
	i.disabled = false
}

// Disable disables the interceptor resulting in cache bypass. All queries
// go directly to the SQL backend.
func (i *Interceptor) Disable() {
	i.disabled = true
}

// StmtQueryContext intercepts query execution on prepared statements.
func (i *Interceptor) StmtQueryContext(ctx context.Context, conn driver.StmtQueryContext, query string, args []driver.NamedValue) (driver.Rows, error) {
	if i.disabled || !cacheable(query, readOnlyFromContext(ctx)) {
		return conn.QueryContext(ctx, args)
	}

	hash, err := i.hashFunc(query, args)
	if err != nil {
		atomic.AddUint64(&i.stats.Errors, 1)
		if i.onErr != nil {
			i.onErr(fmt.Errorf("HashFunc failed: %w", err))
		}
		return conn.QueryContext(ctx, args)
	}

	if cached := i.checkCache(ctx, hash); cached != nil {
		return cached, nil
	}

	rows, err := conn.QueryContext(ctx, args)
	if err != nil {
		return rows, err
	}

	return newRowsRecorder(i.cacheSetter(ctx, hash), rows, i.maxRows), nil
}

// ConnQueryContext intercepts direct query execution on a connection.
func (i *Interceptor) ConnQueryContext(ctx context.Context, conn driver.QueryerContext, query string, args []driver.NamedValue) (driver.Rows, error) {
	if i.disabled || !cacheable(query, readOnlyFromContext(ctx)) {
		return conn.QueryContext(ctx, query, args)
	}

	hash, err := i.hashFunc(query, args)
	if err != nil {
		atomic.AddUint64(&i.stats.Errors, 1)
		if i.onErr != nil {
			i.onErr(fmt.Errorf("HashFunc failed: %w", err))
		}
		return conn.QueryContext(ctx, query, args)
	}

	if cached := i.checkCache(ctx, hash); cached != nil {
		return cached, nil
	}

	rows, err := conn.QueryContext(ctx, query, args)
	if err != nil {
		return rows, err
	}

	return newRowsRecorder(i.cacheSetter(ctx, hash), rows, i.maxRows), nil
}

func (i *Interceptor) cacheSetter(ctx context.Context, hash string) func(item *cache.Item) {
	return func(item *cache.Item) {
		if err := i.c.Set(ctx, hash, item, i.ttl); err != nil {
			atomic.AddUint64(&i.stats.Errors, 1)
			if i.onErr != nil {
				i.onErr(fmt.Errorf("Cache.Set failed: %w", err))
			}
		}
	}
}

func (i *Interceptor) checkCache(ctx context.Context, hash string) driver.Rows {
	item, ok, err := i.c.Get(ctx, hash)
	if err != nil {
		atomic.AddUint64(&i.stats.Errors, 1)
		if i.onErr != nil {
			i.onErr(fmt.Errorf("Cache.Get failed: %w", err))
		}
		return nil
	}

	if !ok {
		atomic.AddUint64(&i.stats.Misses, 1)
		return nil
	}
	atomic.AddUint64(&i.stats.Hits, 1)

	return &rowsCached{
		item,
		0,
	}
}

// Stats returns interceptor counters.
func (i *Interceptor) Stats() *Stats {
	return &Stats{
		Hits:   atomic.LoadUint64(&i.stats.Hits),
		Misses: atomic.LoadUint64(&i.stats.Misses),
		Errors: atomic.LoadUint64(&i.stats.Errors),
	}
}

// driverCacheKey mirrors cacheKey for driver-level argument lists.
func driverCacheKey(query string, args []driver.NamedValue) (string, error) {
	u64, err := hashstructure.Hash(struct {
		Query string
		Args  []driver.NamedValue
	}{
		Query: normalizeSQL(query),
		Args:  args,
	}, hashstructure.FormatV2, nil)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("q%dp%dh%s", len(query), len(args), strconv.FormatUint(u64, 10))
	return key, nil
}
