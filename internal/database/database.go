// Package database provides SQL connection management and transaction helpers for
// the relational storage backends.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Config holds database configuration settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// Supported SQL drivers. "memory" storage never opens a connection.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// IsSQLDriver reports whether driver names a SQL backend.
func IsSQLDriver(driver string) bool {
	return driver == DriverPostgres || driver == DriverMySQL
}

// Connect establishes a database connection with the given configuration.
func Connect(cfg Config) (*sql.DB, error) {
	if !IsSQLDriver(cfg.Driver) {
		return nil, fmt.Errorf("sql: unknown driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
