package sqlboost

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newInterceptedDB(t *testing.T, backend *fakeCacher) (*sql.DB, sqlmock.Sqlmock, *Interceptor) {
	t.Helper()
	assert := require.New(t)

	dsn := fmt.Sprintf("fakeDSN:%s", t.Name())
	mockDB, qMock, err := sqlmock.NewWithDSN(dsn)
	assert.Nil(err)
	t.Cleanup(func() { mockDB.Close() })

	ic, err := NewInterceptor(&InterceptorConfig{
		Cache: backend,
	})
	assert.Nil(err)

	driverName := fmt.Sprintf("mockdriver:%s", t.Name())
	sql.Register(driverName, ic.Driver(mockDB.Driver()))

	db, err := sql.Open(driverName, dsn)
	assert.Nil(err)
	t.Cleanup(func() { db.Close() })

	return db, qMock, ic
}

func runInterceptedQuery(t *testing.T, assert *require.Assertions, qMock sqlmock.Sqlmock, db *sql.DB, ctx context.Context, query string, cacheMissExpected bool) {
	if cacheMissExpected {
		qMock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(18).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("John").AddRow("Lisa"))
	}

	rows, err := db.QueryContext(ctx, query, 18)
	assert.Nil(err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		assert.Nil(rows.Scan(&name))
		names = append(names, name)
	}

	assert.Equal([]string{"John", "Lisa"}, names)
	assert.Nil(qMock.ExpectationsWereMet())
}

func TestNewInterceptor(t *testing.T) {
	assert := require.New(t)

	for _, input := range []*InterceptorConfig{nil, {}} {
		i, err := NewInterceptor(input)
		assert.Nil(i)
		assert.NotNil(err)
	}

	i, err := NewInterceptor(&InterceptorConfig{Cache: newFakeCacher()})
	assert.Nil(err)
	assert.NotNil(i)
	assert.Equal(DefaultTTL, i.ttl)

	s := i.Stats()
	assert.Equal(uint64(0), s.Hits)
	assert.Equal(uint64(0), s.Misses)
}

func TestInterceptorMissThenHit(t *testing.T) {
	assert := require.New(t)

	backend := newFakeCacher()
	db, qMock, ic := newInterceptedDB(t, backend)

	ctx := WithReadOnly(context.Background())
	query := `SELECT name FROM users WHERE age > ?`

	runInterceptedQuery(t, assert, qMock, db, ctx, query, true)
	assert.Equal(1, backend.sets)

	// second identical call is replayed from cache, no expectation set
	runInterceptedQuery(t, assert, qMock, db, ctx, query, false)

	s := ic.Stats()
	assert.Equal(uint64(1), s.Misses)
	assert.Equal(uint64(1), s.Hits)
}

func TestInterceptorIgnoresWriteContext(t *testing.T) {
	assert := require.New(t)

	backend := newFakeCacher()
	db, qMock, _ := newInterceptedDB(t, backend)

	// no WithReadOnly marker: every call goes to the database
	ctx := context.Background()
	query := `SELECT name FROM users WHERE age > ?`

	runInterceptedQuery(t, assert, qMock, db, ctx, query, true)
	runInterceptedQuery(t, assert, qMock, db, ctx, query, true)
	assert.Equal(0, backend.sets)
}

func TestInterceptorIgnoresVolatile(t *testing.T) {
	assert := require.New(t)

	backend := newFakeCacher()
	db, qMock, _ := newInterceptedDB(t, backend)

	ctx := WithReadOnly(context.Background())
	query := `SELECT name FROM users WHERE age > ? ORDER BY RAND()`

	runInterceptedQuery(t, assert, qMock, db, ctx, query, true)
	runInterceptedQuery(t, assert, qMock, db, ctx, query, true)
	assert.Equal(0, backend.sets)
}

func TestInterceptorDisable(t *testing.T) {
	assert := require.New(t)

	backend := newFakeCacher()
	db, qMock, ic := newInterceptedDB(t, backend)

	ic.Disable()
	ctx := WithReadOnly(context.Background())
	query := `SELECT name FROM users WHERE age > ?`

	runInterceptedQuery(t, assert, qMock, db, ctx, query, true)
	assert.Equal(0, backend.sets)

	ic.Enable()
	runInterceptedQuery(t, assert, qMock, db, ctx, query, true)
	assert.Equal(1, backend.sets)
}
