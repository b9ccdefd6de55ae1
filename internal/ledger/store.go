package ledger

import (
	"context"
	"fmt"
	"sync"
)

// Store is the persistence collaborator behind the ledger. Rows and columns
// are 1-based and exclude the header.
type Store interface {
	AppendRow(ctx context.Context, cells []string) error
	ReadAll(ctx context.Context) ([][]string, error)
	UpdateCell(ctx context.Context, row, col int, value string) error
	Ping(ctx context.Context) error
}

// MemoryStore keeps ledger rows in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	rows [][]string
}

// NewMemoryStore creates a store seeded with the given rows
func NewMemoryStore(rows ...[]string) *MemoryStore {
	s := &MemoryStore{}
	for _, row := range rows {
		s.rows = append(s.rows, cloneRow(row))
	}
	return s
}

// AppendRow adds a row at the end of the ledger
func (s *MemoryStore) AppendRow(ctx context.Context, cells []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, cloneRow(cells))
	return nil
}

// ReadAll returns a copy of every row
func (s *MemoryStore) ReadAll(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]string, len(s.rows))
	for i, row := range s.rows {
		out[i] = cloneRow(row)
	}
	return out, nil
}

// UpdateCell overwrites one cell, growing a short row when needed
func (s *MemoryStore) UpdateCell(ctx context.Context, row, col int, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if col < 1 || col > ColumnCount {
		return fmt.Errorf("column %d out of range", col)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 1 || row > len(s.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	cells := s.rows[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	s.rows[row-1] = cells
	return nil
}

// Ping always succeeds for the memory store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func cloneRow(row []string) []string {
	out := make([]string, len(row))
	copy(out, row)
	return out
}
