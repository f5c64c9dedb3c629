package main

import (
	"log"

	"github.com/sqlboost/sqlboost"
	"github.com/sqlboost/sqlboost/cache"

	"github.com/dgraph-io/ristretto"
	redis "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
)

const defaultMaxRowsToCache = 100

func newRistrettoCache(maxRowsToCache int64) (cache.Cacher, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxRowsToCache,
		MaxCost:     maxRowsToCache,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return sqlboost.NewRistretto(c), nil
}

func newRedisCache() (cache.Cacher, error) {
	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{"127.0.0.1:6379"},
	})

	return sqlboost.NewRedis(r, "sqb:"), nil
}

func main() {
	conn, err := sqlboost.NewConn(&sqlboost.Config{
		Engine:   sqlboost.MySQL,
		Host:     "localhost",
		Database: "app",
		User:     "u",
		Password: "p",
	})
	if err != nil {
		log.Fatalf("NewConn() failed: %v", err)
	}
	defer conn.Close()

	// Swap for newRedisCache() to share entries across processes, or
	// leave Cache unset to use the in-process bounded store.
	backend, err := newRistrettoCache(defaultMaxRowsToCache)
	if err != nil {
		log.Fatalf("newRistrettoCache() failed: %v", err)
	}

	b := sqlboost.NewBuilder(conn)
	shim, err := sqlboost.NewShim(&sqlboost.ShimConfig{
		Executor: b,
		Cache:    backend,
		OnError: func(err error) {
			log.Printf("cache error: %v", err)
		},
	})
	if err != nil {
		log.Fatalf("NewShim() failed: %v", err)
	}

	// First call misses and stores; the identical second call is a hit
	// and never reaches the database.
	for i := 0; i < 2; i++ {
		res, err := shim.Run("SELECT id, name FROM users WHERE active = ?", []interface{}{true}, true)
		if err != nil {
			log.Fatalf("Run() failed: %v", err)
		}
		log.Printf("got %d rows", res.RowCount)
	}

	// Writes bypass the cache; wire host write events to ClearCache.
	if _, err := b.Raw("UPDATE users SET active = ? WHERE id = ?", false, 7); err != nil {
		log.Fatalf("Raw() failed: %v", err)
	}
	if err := shim.ClearCache(); err != nil {
		log.Printf("ClearCache() failed: %v", err)
	}

	s := shim.Stats()
	log.Printf("hits=%d misses=%d suppressed=%d", s.Hits, s.Misses, s.Suppressed)
}
