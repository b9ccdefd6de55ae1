package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-lab/internal/database"
	"github.com/yourusername/value-lab/internal/models"
)

func TestPostgresStoreLedger(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	ctx := context.Background()
	l := New(NewPostgresStore(db))

	bet := sampleBet()
	require.NoError(t, l.Append(ctx, bet))
	require.NoError(t, l.WriteResult(ctx, 1, models.BetResultWin))
	require.NoError(t, l.Apply(ctx, models.SettlementUpdate{Position: 1, ProfitLoss: 10, ForecastScore: 0.16}))

	snapshot, err := l.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.Len())
	row := snapshot.Rows[0]
	assert.Equal(t, models.BetResultWin, row.Bet.Result)
	assert.Equal(t, 10.0, *row.Bet.ProfitLoss)
	assert.Equal(t, 0.16, *row.Bet.ForecastScore)
	assert.NoError(t, l.Ping(ctx))
}
