package ledger

import (
	"context"
	"time"

	"github.com/yourusername/value-lab/internal/models"
)

// Ledger maps domain values onto the positional rows of a Store
type Ledger struct {
	store Store
	now   func() time.Time
}

// New creates a ledger over the given store
func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Snapshot reads and decodes every row
func (l *Ledger) Snapshot(ctx context.Context) (models.LedgerSnapshot, error) {
	raw, err := l.store.ReadAll(ctx)
	if err != nil {
		return models.LedgerSnapshot{}, models.NewPersistenceError("read_all", err)
	}

	rows := make([]models.LedgerRow, len(raw))
	for i, cells := range raw {
		rows[i] = DecodeRow(i+1, cells)
	}
	return models.LedgerSnapshot{Rows: rows, TakenAt: l.now()}, nil
}

// Append writes a new bet as the last row
func (l *Ledger) Append(ctx context.Context, bet models.Bet) error {
	if err := l.store.AppendRow(ctx, EncodeRow(bet)); err != nil {
		return models.NewPersistenceError("append_row", err)
	}
	return nil
}

// Apply records the settlement values of one update. The result cell is left
// untouched. The profit/loss cell marks a row as settled, so it is written
// last: a failed write leaves the row unsettled for the next run.
func (l *Ledger) Apply(ctx context.Context, update models.SettlementUpdate) error {
	if err := l.store.UpdateCell(ctx, update.Position, ColForecastScore, FormatNumber(update.ForecastScore)); err != nil {
		return models.NewPersistenceError("update_forecast_score", err)
	}
	if err := l.store.UpdateCell(ctx, update.Position, ColProfitLoss, FormatNumber(update.ProfitLoss)); err != nil {
		return models.NewPersistenceError("update_profit_loss", err)
	}
	return nil
}

// WriteResult records the real-world outcome of the bet at position
func (l *Ledger) WriteResult(ctx context.Context, position int, result models.BetResult) error {
	if err := l.store.UpdateCell(ctx, position, ColResult, EncodeResult(result)); err != nil {
		return models.NewPersistenceError("update_result", err)
	}
	return nil
}

// Ping checks the underlying store
func (l *Ledger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}
