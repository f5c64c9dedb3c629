package sqlboost

import (
	"fmt"
	"net/url"
)

// Engine identifies a supported database engine.
type Engine string

const (
	// MySQL connects through the go-sql-driver/mysql driver.
	MySQL Engine = "mysql"
	// Postgres connects through the pgx stdlib driver.
	Postgres Engine = "postgres"
	// SQLite connects through the modernc.org/sqlite driver.
	SQLite Engine = "sqlite"
	// SQLServer connects through a registered "sqlserver" driver.
	SQLServer Engine = "sqlserver"
)

// SupportedEngines returns all engine identifiers sqlboost knows how to
// build connection strings for.
func SupportedEngines() []Engine {
	return []Engine{MySQL, Postgres, SQLite, SQLServer}
}

// profile holds the per-engine defaults and DSN construction. Profiles are
// pure data; nothing here touches a live connection.
type profile struct {
	driverName       string
	defaultPort      int
	defaultCharset   string
	defaultCollation string
	fileBased        bool
	buildDSN         func(c *Config) string
	setupStmts       func(c *Config) []string
}

var profiles = map[Engine]profile{
	MySQL: {
		driverName:       "mysql",
		defaultPort:      3306,
		defaultCharset:   "utf8mb4",
		defaultCollation: "utf8mb4_unicode_ci",
		buildDSN: func(c *Config) string {
			return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true",
				c.User, c.Password, c.Host, c.Port, c.Database, c.Charset)
		},
		setupStmts: func(c *Config) []string {
			return []string{
				fmt.Sprintf("SET NAMES %s COLLATE %s", c.Charset, c.Collation),
			}
		},
	},
	Postgres: {
		driverName:     "pgx",
		defaultPort:    5432,
		defaultCharset: "UTF8",
		buildDSN: func(c *Config) string {
			u := url.URL{
				Scheme: "postgres",
				User:   url.UserPassword(c.User, c.Password),
				Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
				Path:   "/" + c.Database,
			}
			q := url.Values{}
			q.Set("client_encoding", c.Charset)
			u.RawQuery = q.Encode()
			return u.String()
		},
		setupStmts: func(c *Config) []string { return nil },
	},
	SQLite: {
		driverName: "sqlite",
		fileBased:  true,
		buildDSN: func(c *Config) string {
			return fmt.Sprintf("file:%s?cache=shared&mode=rwc", c.Path)
		},
		setupStmts: func(c *Config) []string {
			return []string{
				"PRAGMA journal_mode=WAL",
				"PRAGMA foreign_keys=ON",
			}
		},
	},
	SQLServer: {
		driverName:     "sqlserver",
		defaultPort:    1433,
		defaultCharset: "UTF-8",
		buildDSN: func(c *Config) string {
			u := url.URL{
				Scheme: "sqlserver",
				User:   url.UserPassword(c.User, c.Password),
				Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			}
			q := url.Values{}
			q.Set("database", c.Database)
			u.RawQuery = q.Encode()
			return u.String()
		},
		setupStmts: func(c *Config) []string { return nil },
	},
}

// profileFor resolves the engine profile. Unknown identifiers fail with a
// ConfigError rather than defaulting to any engine.
func profileFor(e Engine) (profile, error) {
	p, ok := profiles[e]
	if !ok {
		return profile{}, &ConfigError{Field: "engine", Reason: fmt.Sprintf("unsupported engine %q", e)}
	}
	return p, nil
}
