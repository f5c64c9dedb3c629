package sqlboost

import (
	"context"
	"time"

	"github.com/sqlboost/sqlboost/cache"

	redis "github.com/go-redis/redis/v8"
	msgpack "github.com/vmihailenco/msgpack/v4"
)

// Redis implements cache.Cacher backed by a shared redis instance, with
// go-redis as the client library. Items are serialized with msgpack. All
// keys carry the configured prefix, which also scopes group flushes.
type Redis struct {
	c         redis.UniversalClient
	keyPrefix string
}

// NewRedis creates a redis backend. Every key created by sqlboost will
// start with keyPrefix.
func NewRedis(c redis.UniversalClient, keyPrefix string) *Redis {
	return &Redis{
		c:         c,
		keyPrefix: keyPrefix,
	}
}

// Get gets a cache item from redis. Returns a pointer to the item, a
// boolean representing whether the key exists, and an error.
func (r *Redis) Get(ctx context.Context, key string) (*cache.Item, bool, error) {
	b, err := r.c.Get(ctx, r.keyPrefix+key).Bytes()
	switch err {
	case nil:
		var item cache.Item
		if err := msgpack.Unmarshal(b, &item); err != nil {
			return nil, true, err
		}
		return &item, true, nil
	case redis.Nil:
		return nil, false, nil
	default:
		return nil, false, err
	}
}

// Set sets the given item into redis with the provided TTL duration.
func (r *Redis) Set(ctx context.Context, key string, item *cache.Item, ttl time.Duration) error {
	b, err := msgpack.Marshal(item)
	if err != nil {
		return err
	}

	_, err = r.c.Set(ctx, r.keyPrefix+key, b, ttl).Result()
	return err
}

// Flush implements cache.Flusher: a group-level flush of every key under
// the prefix, scanning rather than using KEYS so a shared redis is not
// blocked.
func (r *Redis) Flush(ctx context.Context) error {
	iter := r.c.Scan(ctx, 0, r.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.c.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
