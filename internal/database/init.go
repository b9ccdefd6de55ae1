package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/value-lab/internal/config"
)

// ledgerSchema holds one positional row per bet; id preserves append order
var ledgerSchema = []string{
	`CREATE TABLE IF NOT EXISTS ledger_rows (
		id BIGSERIAL PRIMARY KEY,
		cells TEXT[] NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Initialize creates a database connection pool and ensures the ledger schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the ledger tables when missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	return db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, stmt := range ledgerSchema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to ensure ledger schema: %w", err)
			}
		}
		return nil
	})
}
