// Package database provides SQL connection management and transaction helpers for the
// PostgreSQL and MySQL envelope storages.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

const (
	driverPostgres = "postgres"
	driverMySQL    = "mysql"

	mysqlScheme = "mysql://"
)

// Config holds database configuration settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// Connect establishes a database connection with the given configuration.
func Connect(cfg Config) (*sql.DB, error) {
	return ConnectContext(context.Background(), cfg)
}

// ConnectContext is Connect with a context bounding the initial ping.
func ConnectContext(ctx context.Context, cfg Config) (*sql.DB, error) {
	dsn, err := driverDSN(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// driverDSN accepts MySQL connection strings with or without the mysql:// prefix used by
// migrations and pins them to UTC with parsed time columns.
func driverDSN(driver, connectionString string) (string, error) {
	if driver != driverMySQL {
		return connectionString, nil
	}
	cfg, err := mysql.ParseDSN(strings.TrimPrefix(connectionString, mysqlScheme))
	if err != nil {
		return "", fmt.Errorf("invalid mysql connection string: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// MigrationURL converts a storage connection string into the URL form golang-migrate
// expects. MySQL DSNs gain the mysql:// scheme and multi statement support. PostgreSQL
// connection strings must already be postgres:// or postgresql:// URLs.
func MigrationURL(driver, connectionString string) (string, error) {
	switch driver {
	case driverMySQL:
		cfg, err := mysql.ParseDSN(strings.TrimPrefix(connectionString, mysqlScheme))
		if err != nil {
			return "", fmt.Errorf("invalid mysql connection string: %w", err)
		}
		cfg.MultiStatements = true
		return mysqlScheme + cfg.FormatDSN(), nil
	case driverPostgres:
		u, err := url.Parse(connectionString)
		if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			return "", fmt.Errorf("postgres connection string must be a postgres:// url")
		}
		return connectionString, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}
