package storage

import (
	"fmt"
	"time"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config selects the database and bounds every query.
type Config struct {
	Driver       string
	DSN          string
	QueryTimeout time.Duration
	MaxOpenConns int
}

// DefaultConfig returns an in-memory sqlite configuration.
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          "file:todo?mode=memory&cache=shared&_foreign_keys=on",
		QueryTimeout: 3 * time.Second,
		MaxOpenConns: 1,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return &ConfigError{Field: "Driver", Message: fmt.Sprintf("unsupported driver %q", c.Driver)}
	}
	if c.DSN == "" {
		return &ConfigError{Field: "DSN", Message: "cannot be empty"}
	}
	if c.QueryTimeout <= 0 {
		return &ConfigError{Field: "QueryTimeout", Message: "must be greater than 0"}
	}
	if c.MaxOpenConns < 0 {
		return &ConfigError{Field: "MaxOpenConns", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
