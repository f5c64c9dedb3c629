package sqlboost

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sqlboost/sqlboost/cache"
)

// DefaultTTL is how long a stored result bundle stays valid unless the
// host configures otherwise.
const DefaultTTL = time.Hour

// Executor is the statement-execution surface the shim wraps. Builder
// satisfies it; tests substitute their own.
type Executor interface {
	Exec(query string, params []interface{}) (*Result, error)
}

// Exec implements Executor as a one-shot execution, the same path as Raw.
func (b *Builder) Exec(query string, params []interface{}) (*Result, error) {
	return b.Raw(query, params...)
}

// ShimConfig configures a Shim.
type ShimConfig struct {
	// Executor runs statements on cache miss. Required.
	Executor Executor
	// Cache is the external key/value store shared with the rest of the
	// host environment. Nil means the in-process bounded fallback store.
	Cache cache.Cacher
	// TTL for stored entries; DefaultTTL when zero.
	TTL time.Duration
	// OnError is called whenever a cache backend or the key derivation
	// fails. The shim never fails a query over a cache problem; use this
	// hook to observe those errors.
	OnError func(error)
	// Logger receives debug signals. Nil means no logging.
	Logger Logger
}

// Shim intercepts logical queries and serves repeated reads from cache
// while suppressing redundant re-execution. Evaluation order per query:
// duplicate suppressor, cacheability classification, cache lookup, then
// the executor. Write-context traffic is never served from or written to
// cache.
type Shim struct {
	exec   Executor
	c      cache.Cacher
	dedup  *suppressor
	ttl    time.Duration
	onErr  func(error)
	logger Logger
	stats  Stats

	// keys stored in an external backend that cannot group-flush; kept
	// so ClearCache can delete them individually.
	tracked map[string]struct{}
}

// NewShim returns a shim initialised with the provided config.
func NewShim(config *ShimConfig) (*Shim, error) {
	if config == nil {
		return nil, fmt.Errorf("config can't be nil")
	}
	if config.Executor == nil {
		return nil, fmt.Errorf("executor must be set in Config")
	}

	s := &Shim{
		exec:   config.Executor,
		dedup:  newSuppressor(),
		ttl:    config.TTL,
		onErr:  config.OnError,
		logger: config.Logger,
	}
	if s.ttl == 0 {
		s.ttl = DefaultTTL
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}
	if config.Cache != nil {
		s.c = config.Cache
		if _, ok := s.c.(cache.Flusher); !ok {
			s.tracked = make(map[string]struct{})
		}
	} else {
		s.c = newLocalStore(localCacheCap)
	}
	return s, nil
}

// Run executes a logical query. readOnly marks the invocation context as a
// cache-eligible surface; the flag is supplied by the host, never derived
// here. Absence of a cached or duplicate entry is a normal code path; only
// executor failures surface as errors.
func (s *Shim) Run(query string, params []interface{}, readOnly bool) (*Result, error) {
	sig := querySignature(query)
	if item, ok := s.dedup.check(sig); ok {
		atomic.AddUint64(&s.stats.Suppressed, 1)
		return itemToResult(item), nil
	}

	ctx := context.Background()
	key := ""
	if cacheable(query, readOnly) {
		var err error
		key, err = cacheKey(query, params)
		if err != nil {
			atomic.AddUint64(&s.stats.Errors, 1)
			if s.onErr != nil {
				s.onErr(fmt.Errorf("cache key derivation failed: %w", err))
			}
			key = ""
		}
	}

	if key != "" {
		item, ok, err := s.c.Get(ctx, key)
		switch {
		case err != nil:
			atomic.AddUint64(&s.stats.Errors, 1)
			if s.onErr != nil {
				s.onErr(fmt.Errorf("cache get failed: %w", err))
			}
		case ok:
			atomic.AddUint64(&s.stats.Hits, 1)
			s.dedup.record(sig, item)
			return itemToResult(item), nil
		default:
			atomic.AddUint64(&s.stats.Misses, 1)
		}
	}

	res, err := s.exec.Exec(query, params)
	if err != nil {
		return nil, err
	}

	item := resultToItem(res)
	s.dedup.record(sig, item)

	if key != "" {
		if err := s.c.Set(ctx, key, item, s.ttl); err != nil {
			atomic.AddUint64(&s.stats.Errors, 1)
			if s.onErr != nil {
				s.onErr(fmt.Errorf("cache set failed: %w", err))
			}
		} else if s.tracked != nil {
			s.tracked[key] = struct{}{}
		}
	}
	return res, nil
}

// ClearCache is the invalidation entry point. The host invokes it on
// write-type events; the shim itself subscribes to nothing. The fallback
// store is emptied; an external backend is group-flushed when it can be,
// otherwise the keys this shim stored are deleted individually.
func (s *Shim) ClearCache() error {
	ctx := context.Background()

	if f, ok := s.c.(cache.Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			atomic.AddUint64(&s.stats.Errors, 1)
			return err
		}
		return nil
	}

	if d, ok := s.c.(cache.Deleter); ok && len(s.tracked) > 0 {
		keys := make([]string, 0, len(s.tracked))
		for k := range s.tracked {
			keys = append(keys, k)
		}
		s.tracked = make(map[string]struct{})
		if err := d.Del(ctx, keys...); err != nil {
			atomic.AddUint64(&s.stats.Errors, 1)
			return err
		}
		return nil
	}

	s.logger.Debug("clear cache: backend supports neither flush nor delete", nil)
	return nil
}

// Stats contains shim counters.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Suppressed uint64
	Errors     uint64
}

// Stats returns a snapshot of the shim counters.
func (s *Shim) Stats() *Stats {
	return &Stats{
		Hits:       atomic.LoadUint64(&s.stats.Hits),
		Misses:     atomic.LoadUint64(&s.stats.Misses),
		Suppressed: atomic.LoadUint64(&s.stats.Suppressed),
		Errors:     atomic.LoadUint64(&s.stats.Errors),
	}
}

func resultToItem(r *Result) *cache.Item {
	return &cache.Item{
		Kind:         int(r.Kind),
		Cols:         r.Cols,
		Rows:         r.Rows,
		RowCount:     r.RowCount,
		Affected:     r.Affected,
		LastInsertID: r.LastInsertID,
		OK:           r.OK,
	}
}

func itemToResult(i *cache.Item) *Result {
	return &Result{
		Kind:         Kind(i.Kind),
		Cols:         i.Cols,
		Rows:         i.Rows,
		RowCount:     i.RowCount,
		Affected:     i.Affected,
		LastInsertID: i.LastInsertID,
		OK:           i.OK,
	}
}
