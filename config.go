package sqlboost

import "time"

// Config describes a database connection. Required fields depend on the
// engine: file-based engines need only Path, networked engines need Host,
// Database and User. The record is consumed once at construction and not
// mutated afterwards.
type Config struct {
	Engine   Engine
	Host     string
	Port     int
	Database string
	User     string
	Password string
	// Path is the database file location for file-based engines.
	Path      string
	Charset   string
	Collation string

	// Connection pool knobs, passed through to database/sql.
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration

	// Logger receives debug and error signals. Nil means no logging.
	Logger Logger
}

// applyDefaults merges engine defaults into c. A field already set by the
// caller always wins; defaults are applied exactly once, at construction.
func (c *Config) applyDefaults(p profile) {
	if c.Port == 0 {
		c.Port = p.defaultPort
	}
	if c.Charset == "" {
		c.Charset = p.defaultCharset
	}
	if c.Collation == "" {
		c.Collation = p.defaultCollation
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
}

// validate reports the first missing required field for the engine.
func (c *Config) validate(p profile) error {
	if p.fileBased {
		if c.Path == "" {
			return &ConfigError{Field: "path"}
		}
		return nil
	}
	if c.Host == "" {
		return &ConfigError{Field: "host"}
	}
	if c.Database == "" {
		return &ConfigError{Field: "database"}
	}
	if c.User == "" {
		return &ConfigError{Field: "user"}
	}
	return nil
}
