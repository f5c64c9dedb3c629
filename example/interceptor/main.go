package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/sqlboost/sqlboost"

	redis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/stdlib"
)

func main() {
	rc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{"127.0.0.1:6379"},
	})

	interceptor, err := sqlboost.NewInterceptor(&sqlboost.InterceptorConfig{
		Cache: sqlboost.NewRedis(rc, "sqb:"),
		OnError: func(err error) {
			log.Printf("cache error: %v", err)
		},
	})
	if err != nil {
		log.Fatalf("NewInterceptor() failed: %v", err)
	}

	// wrap the pgx driver with the interceptor and register it
	sql.Register("pgx-with-cache", interceptor.Driver(stdlib.GetDefaultDriver()))

	db, err := sql.Open("pgx-with-cache", "postgres://u:p@localhost:5432/app")
	if err != nil {
		log.Fatalf("sql.Open() failed: %v", err)
	}
	defer db.Close()

	// Only queries issued under a read-only context are cache-eligible.
	ctx := sqlboost.WithReadOnly(context.Background())
	rows, err := db.QueryContext(ctx, "SELECT name, pages FROM books WHERE pages > $1", 100)
	if err != nil {
		log.Fatalf("QueryContext() failed: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var pages int
		if err := rows.Scan(&name, &pages); err != nil {
			log.Fatalf("Scan() failed: %v", err)
		}
		log.Printf("%s: %d pages", name, pages)
	}

	s := interceptor.Stats()
	log.Printf("hits=%d misses=%d", s.Hits, s.Misses)
}
