package sqlboost

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/hashstructure/v2"
)

// cacheKey derives the backend cache key for one call from the normalized
// SQL text and the parameters of that exact call. Ambient builder state is
// deliberately not consulted: two calls with equal SQL and equal parameter
// values hash identically regardless of call site, and any parameter
// difference yields a different key.
func cacheKey(query string, params []interface{}) (string, error) {
	u64, err := hashstructure.Hash(struct {
		Query  string
		Params []interface{}
	}{
		Query:  normalizeSQL(query),
		Params: params,
	}, hashstructure.FormatV2, nil)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("q%dp%dh%s", len(query), len(params), strconv.FormatUint(u64, 10))
	return key, nil
}

// querySignature hashes the raw SQL text alone. The duplicate suppressor
// keys on this, so the same statement with different parameters is still
// one signature.
func querySignature(query string) uint64 {
	u64, err := hashstructure.Hash(query, hashstructure.FormatV2, nil)
	if err != nil {
		// hashstructure cannot fail on a plain string; keep the zero
		// signature rather than propagating.
		return 0
	}
	return u64
}
