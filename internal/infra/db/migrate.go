package db

import (
	"context"
	"database/sql"
	"fmt"
)

// KVTable is the key/value table used by the durable cache tier.
const KVTable = "kv_store"

// MigrateUp creates the schema. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("MigrateUp: kv_store: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_kv_store_updated_at ON kv_store(updated_at)`); err != nil {
		return fmt.Errorf("MigrateUp: index: %w", err)
	}
	return nil
}

// MigrateDown drops the schema. All cached entries are lost.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`DROP INDEX IF EXISTS idx_kv_store_updated_at`,
		`DROP TABLE IF EXISTS kv_store`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("MigrateDown: %w", err)
		}
	}
	return nil
}
