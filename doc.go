/*
Package sqlboost is a relational-database access layer: a fluent statement
builder over a lazily-established connection, paired with a caching shim
that serves repeated reads from cache and suppresses redundant
re-execution of identical queries.

Usage:

	import (
		"github.com/sqlboost/sqlboost"

		_ "github.com/go-sql-driver/mysql"
	)

	func main() {
		conn, err := sqlboost.NewConn(&sqlboost.Config{
			Engine:   sqlboost.MySQL,
			Host:     "localhost",
			Database: "app",
			User:     "u",
			Password: "p",
		})
		...

		b := sqlboost.NewBuilder(conn)
		res, err := b.Query("SELECT id, name FROM users WHERE id = ?").
			Bind(7).
			Single().
			Fetch()
		...

		// wrap the builder in the caching shim; reads issued on a
		// read-only surface are served from cache on repeat
		shim, err := sqlboost.NewShim(&sqlboost.ShimConfig{
			Executor: b,
		})
		...
		res, err = shim.Run("SELECT id, name FROM users", nil, true)
	}

The shim classifies a query as cacheable when the caller marks the
invocation as read-only, the statement is a SELECT, and the text is free
of volatile constructs such as RAND() or NOW(). Anything else always goes
to the database. Write events in the host should be wired to ClearCache.

Hosts that use plain database/sql directly can instead wrap their driver
with the Interceptor, which applies the same classification at the driver
level for queries issued under a context marked with WithReadOnly.
*/
package sqlboost
