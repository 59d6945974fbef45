// Package db opens and migrates the SQLite database backing the durable cache tier.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	BusyTimeout     time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
// SQLite serializes writers, so the pool stays small.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		BusyTimeout:     5 * time.Second,
	}
}

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
}

// Open opens the SQLite database at path, applies pool settings and pragmas,
// and verifies the connection. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("open: empty database path")
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	cfg := getConnectionConfigFromEnv()
	if path == ":memory:" {
		// each connection would get its own empty database
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
		cfg.ConnMaxIdleTime = 0
	}

	if err := Configure(ctx, db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Info("cache database opened",
		slog.String("path", path),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Duration("busy_timeout", cfg.BusyTimeout))
	return db, nil
}

// Configure applies pool settings and pragmas to an open handle and pings it.
func Configure(ctx context.Context, db *sql.DB, cfg ConnectionConfig) error {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	stmts := append([]string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
	}, pragmas...)
	for _, p := range stmts {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

// getConnectionConfigFromEnv reads connection pool configuration from environment variables.
// Falls back to default values if not set or invalid.
func getConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()

	if maxOpen := os.Getenv("CACHE_DB_MAX_OPEN_CONNS"); maxOpen != "" {
		if val, err := strconv.Atoi(maxOpen); err == nil && val > 0 {
			cfg.MaxOpenConns = val
		}
	}

	if maxIdle := os.Getenv("CACHE_DB_MAX_IDLE_CONNS"); maxIdle != "" {
		if val, err := strconv.Atoi(maxIdle); err == nil && val >= 0 {
			cfg.MaxIdleConns = val
		}
	}

	if lifetime := os.Getenv("CACHE_DB_CONN_MAX_LIFETIME"); lifetime != "" {
		if val, err := time.ParseDuration(lifetime); err == nil && val > 0 {
			cfg.ConnMaxLifetime = val
		}
	}

	if busy := os.Getenv("CACHE_DB_BUSY_TIMEOUT"); busy != "" {
		if val, err := time.ParseDuration(busy); err == nil && val >= 0 {
			cfg.BusyTimeout = val
		}
	}

	return cfg
}
