package sqlboost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	assert := require.New(t)

	tcs := map[string]struct {
		cfg      *Config
		expected string
	}{
		"mysql": {
			cfg:      &Config{Engine: MySQL, Host: "localhost", Database: "app", User: "u", Password: "p"},
			expected: "u:p@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=true",
		},
		"postgres": {
			cfg:      &Config{Engine: Postgres, Host: "localhost", Database: "app", User: "u", Password: "p"},
			expected: "postgres://u:p@localhost:5432/app?client_encoding=UTF8",
		},
		"sqlite": {
			cfg:      &Config{Engine: SQLite, Path: "app.db"},
			expected: "file:app.db?cache=shared&mode=rwc",
		},
		"sqlserver": {
			cfg:      &Config{Engine: SQLServer, Host: "localhost", Database: "app", User: "u", Password: "p"},
			expected: "sqlserver://u:p@localhost:1433?database=app",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			p, err := profileFor(tc.cfg.Engine)
			assert.Nil(err)
			tc.cfg.applyDefaults(p)
			assert.Equal(tc.expected, p.buildDSN(tc.cfg))
		})
	}
}

func TestUnsupportedEngine(t *testing.T) {
	assert := require.New(t)

	_, err := profileFor(Engine("mongodb"))
	assert.NotNil(err)
	var cfgErr *ConfigError
	assert.ErrorAs(err, &cfgErr)
	assert.Equal("engine", cfgErr.Field)

	_, err = NewConn(&Config{Engine: "mongodb"})
	assert.NotNil(err)
}

func TestApplyDefaults(t *testing.T) {
	assert := require.New(t)

	p, err := profileFor(MySQL)
	assert.Nil(err)

	// defaults fill only unset fields
	cfg := &Config{Engine: MySQL, Host: "h", Database: "d", User: "u"}
	cfg.applyDefaults(p)
	assert.Equal(3306, cfg.Port)
	assert.Equal("utf8mb4", cfg.Charset)
	assert.Equal("utf8mb4_unicode_ci", cfg.Collation)

	// a caller-set value always wins
	cfg = &Config{Engine: MySQL, Host: "h", Database: "d", User: "u", Port: 3307, Charset: "latin1"}
	cfg.applyDefaults(p)
	assert.Equal(3307, cfg.Port)
	assert.Equal("latin1", cfg.Charset)
}

func TestValidate(t *testing.T) {
	assert := require.New(t)

	tcs := []struct {
		cfg   *Config
		field string
	}{
		{&Config{Engine: MySQL}, "host"},
		{&Config{Engine: MySQL, Host: "h"}, "database"},
		{&Config{Engine: MySQL, Host: "h", Database: "d"}, "user"},
		{&Config{Engine: SQLite}, "path"},
	}

	for _, tc := range tcs {
		p, err := profileFor(tc.cfg.Engine)
		assert.Nil(err)
		err = tc.cfg.validate(p)
		var cfgErr *ConfigError
		assert.ErrorAs(err, &cfgErr)
		assert.Equal(tc.field, cfgErr.Field)
	}

	// file-based engines need only a path
	p, _ := profileFor(SQLite)
	assert.Nil((&Config{Engine: SQLite, Path: "x.db"}).validate(p))
}
