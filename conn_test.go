package sqlboost

import (
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func mysqlTestConfig() *Config {
	return &Config{Engine: MySQL, Host: "localhost", Database: "app", User: "u", Password: "p"}
}

func newTestConn(t *testing.T) (*Conn, sqlmock.Sqlmock) {
	t.Helper()
	assert := require.New(t)

	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	assert.Nil(err)

	conn, err := NewConn(mysqlTestConfig())
	assert.Nil(err)
	conn.openDB = func(driverName, dsn string) (*sql.DB, error) {
		return db, nil
	}
	return conn, mock
}

func expectMySQLSetup(mock sqlmock.Sqlmock) {
	mock.ExpectPing()
	mock.ExpectExec("SET NAMES utf8mb4 COLLATE utf8mb4_unicode_ci").
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestConnectIdempotent(t *testing.T) {
	assert := require.New(t)

	conn, mock := newTestConn(t)
	expectMySQLSetup(mock)

	// two calls, one underlying connection attempt
	assert.Nil(conn.Connect())
	assert.Nil(conn.Connect())
	assert.Nil(mock.ExpectationsWereMet())
}

func TestConnectRetriesPing(t *testing.T) {
	assert := require.New(t)

	conn, mock := newTestConn(t)
	mock.ExpectPing().WillReturnError(errors.New("not yet"))
	mock.ExpectPing().WillReturnError(errors.New("still not"))
	mock.ExpectPing()
	mock.ExpectExec("SET NAMES utf8mb4 COLLATE utf8mb4_unicode_ci").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.Nil(conn.Connect())
	assert.Nil(mock.ExpectationsWereMet())
}

func TestConnectFailureWraps(t *testing.T) {
	assert := require.New(t)

	conn, mock := newTestConn(t)
	driverErr := errors.New("connection refused")
	for i := 0; i < connectAttempts; i++ {
		mock.ExpectPing().WillReturnError(driverErr)
	}
	mock.ExpectClose()

	err := conn.Connect()
	var connErr *ConnError
	assert.ErrorAs(err, &connErr)
	assert.Equal(MySQL, connErr.Engine)
	assert.ErrorIs(err, driverErr)
}

func TestHandleImplicitConnect(t *testing.T) {
	assert := require.New(t)

	conn, mock := newTestConn(t)
	expectMySQLSetup(mock)

	h, err := conn.Handle()
	assert.Nil(err)
	assert.NotNil(h)
	assert.Nil(mock.ExpectationsWereMet())
}

func TestTransactionPassthrough(t *testing.T) {
	assert := require.New(t)

	conn, mock := newTestConn(t)
	expectMySQLSetup(mock)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Nil(conn.Begin())
	assert.Nil(conn.Commit())
	assert.Nil(conn.Begin())
	assert.Nil(conn.Rollback())
	assert.Nil(mock.ExpectationsWereMet())

	// commit without a transaction is a usage error
	var usageErr *UsageError
	assert.ErrorAs(conn.Commit(), &usageErr)
}
