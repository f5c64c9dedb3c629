package sqlboost

import (
	"time"

	"github.com/sqlboost/sqlboost/cache"
)

const (
	dedupWindow  = time.Second
	dedupMaxSigs = 100
)

// suppressor tracks recently seen query signatures. An identical SQL text
// seen again within the window is treated as a redundant re-issue and
// answered from the recorded result bundle without touching the executor
// or the cache. Signatures hash the SQL text alone, so the table is a
// separate namespace from the cache keys.
type suppressor struct {
	window  time.Duration
	maxSigs int
	seen    map[uint64]*sigEntry
	order   []uint64
	now     func() time.Time
}

type sigEntry struct {
	at   time.Time
	item *cache.Item
}

func newSuppressor() *suppressor {
	return &suppressor{
		window:  dedupWindow,
		maxSigs: dedupMaxSigs,
		seen:    make(map[uint64]*sigEntry),
		now:     time.Now,
	}
}

// check returns the recorded bundle when sig was seen within the window.
// An expired entry is not removed here; record overwrites it in place.
func (s *suppressor) check(sig uint64) (*cache.Item, bool) {
	e, ok := s.seen[sig]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.at) > s.window {
		return nil, false
	}
	return e.item, true
}

// record stores the result bundle for sig, evicting the oldest-inserted
// signature once the cap is exceeded.
func (s *suppressor) record(sig uint64, item *cache.Item) {
	if e, ok := s.seen[sig]; ok {
		e.at = s.now()
		e.item = item
		return
	}

	s.seen[sig] = &sigEntry{at: s.now(), item: item}
	s.order = append(s.order, sig)
	for len(s.order) > s.maxSigs {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}
}
