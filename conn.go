package sqlboost

import (
	"context"
	"database/sql"
	"time"
)

const (
	connectAttempts = 3
	connectBackoff  = 100 * time.Millisecond
)

// Conn owns a single lazily-established connection handle. It is built for
// a single-threaded-per-request model: one Conn serves one logical request
// at a time and performs no internal locking.
type Conn struct {
	cfg       *Config
	prof      profile
	dsn       string
	db        *sql.DB
	tx        *sql.Tx
	connected bool

	// last identifier generated by an INSERT through this connection.
	lastInsertID int64
	hasLastID    bool

	// openDB is a seam for tests; production always goes through sql.Open.
	openDB func(driverName, dsn string) (*sql.DB, error)
}

// NewConn validates the configuration, merges engine defaults and returns
// an unconnected Conn. No connection attempt is made until Connect or the
// first statement.
func NewConn(cfg *Config) (*Conn, error) {
	if cfg == nil {
		return nil, &ConfigError{Field: "config", Reason: "must not be nil"}
	}
	p, err := profileFor(cfg.Engine)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(p); err != nil {
		return nil, err
	}
	cfg.applyDefaults(p)

	return &Conn{
		cfg:    cfg,
		prof:   p,
		dsn:    p.buildDSN(cfg),
		openDB: sql.Open,
	}, nil
}

// Connect establishes the underlying connection. It is idempotent: once a
// connection is up, further calls are no-ops. The initial ping is retried
// a bounded number of times with backoff; statement execution later on is
// never retried here.
func (c *Conn) Connect() error {
	if c.connected {
		return nil
	}

	db, err := c.openDB(c.prof.driverName, c.dsn)
	if err != nil {
		return &ConnError{Engine: c.cfg.Engine, Err: err}
	}

	if c.cfg.MaxOpen > 0 {
		db.SetMaxOpenConns(c.cfg.MaxOpen)
	}
	if c.cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(c.cfg.MaxIdle)
	}
	if c.cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.cfg.ConnMaxLifetime)
	}

	backoff := connectBackoff
	for attempt := 1; ; attempt++ {
		err = db.Ping()
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			db.Close()
			return &ConnError{Engine: c.cfg.Engine, Err: err}
		}
		c.cfg.Logger.Debug("connect retry", map[string]interface{}{
			"engine":  string(c.cfg.Engine),
			"attempt": attempt,
			"error":   err.Error(),
		})
		time.Sleep(backoff)
		backoff *= 2
	}

	for _, stmt := range c.prof.setupStmts(c.cfg) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return &ConnError{Engine: c.cfg.Engine, Err: err}
		}
	}

	c.db = db
	c.connected = true
	return nil
}

// Handle exposes the live connection, connecting first if needed.
func (c *Conn) Handle() (*sql.DB, error) {
	if err := c.Connect(); err != nil {
		return nil, err
	}
	return c.db, nil
}

// Close tears down the connection. A closed Conn can be reconnected.
func (c *Conn) Close() error {
	if !c.connected {
		return nil
	}
	c.connected = false
	c.tx = nil
	err := c.db.Close()
	c.db = nil
	return err
}

// Begin starts a transaction. Passthrough: a second Begin on an open
// transaction is whatever the driver does, it is not intercepted here.
func (c *Conn) Begin() error {
	db, err := c.Handle()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return &ExecError{Query: "BEGIN", Err: err}
	}
	c.tx = tx
	return nil
}

// Commit commits the open transaction.
func (c *Conn) Commit() error {
	if c.tx == nil {
		return &UsageError{Op: "Commit", Reason: "no open transaction"}
	}
	err := c.tx.Commit()
	c.tx = nil
	if err != nil {
		return &ExecError{Query: "COMMIT", Err: err}
	}
	return nil
}

// Rollback rolls back the open transaction.
func (c *Conn) Rollback() error {
	if c.tx == nil {
		return &UsageError{Op: "Rollback", Reason: "no open transaction"}
	}
	err := c.tx.Rollback()
	c.tx = nil
	if err != nil {
		return &ExecError{Query: "ROLLBACK", Err: err}
	}
	return nil
}

// preparer abstracts the statement source: the open transaction when one
// is active, the plain handle otherwise.
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

func (c *Conn) preparer() (preparer, error) {
	if c.tx != nil {
		return c.tx, nil
	}
	return c.Handle()
}
