package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/value-lab/internal/database"
)

// PostgresStore persists ledger rows as text arrays, ordered by insertion id
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a store backed by the ledger_rows table
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// AppendRow inserts a row at the end of the ledger
func (s *PostgresStore) AppendRow(ctx context.Context, cells []string) error {
	_, err := s.db.Exec(ctx, `INSERT INTO ledger_rows (cells) VALUES ($1)`, cells)
	if err != nil {
		return fmt.Errorf("failed to append ledger row: %w", err)
	}
	return nil
}

// ReadAll returns every row in insertion order
func (s *PostgresStore) ReadAll(ctx context.Context) ([][]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ARRAY(
			SELECT COALESCE(c, '') FROM unnest(cells) WITH ORDINALITY AS t(c, n) ORDER BY n
		)
		FROM ledger_rows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]string, error) {
		var cells []string
		err := row.Scan(&cells)
		return cells, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger rows: %w", err)
	}
	return result, nil
}

// UpdateCell overwrites one cell of the row at the given 1-based position.
// Postgres pads a short array with NULLs; ReadAll folds them to empty cells.
func (s *PostgresStore) UpdateCell(ctx context.Context, row, col int, value string) error {
	if row < 1 {
		return fmt.Errorf("row %d out of range", row)
	}
	if col < 1 || col > ColumnCount {
		return fmt.Errorf("column %d out of range", col)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE ledger_rows SET cells[$1] = $2
		WHERE id = (SELECT id FROM ledger_rows ORDER BY id OFFSET $3 LIMIT 1)`,
		col, value, row-1)
	if err != nil {
		return fmt.Errorf("failed to update ledger cell (%d,%d): %w", row, col, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("row %d out of range", row)
	}
	return nil
}

// Ping verifies database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
