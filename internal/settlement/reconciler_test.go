package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-lab/internal/ledger"
	"github.com/yourusername/value-lab/internal/models"
)

func row(position int, result models.BetResult, odds, prob, stake float64) models.LedgerRow {
	return models.LedgerRow{
		Position: position,
		Bet: models.Bet{
			Event:             "UFC 314",
			Matchup:           "Volkanovski vs Lopes",
			Selection:         "Volkanovski",
			Odds:              odds,
			StatedProbability: prob,
			Stake:             stake,
			Result:            result,
		},
	}
}

func snapshotOf(rows ...models.LedgerRow) models.LedgerSnapshot {
	return models.LedgerSnapshot{Rows: rows, TakenAt: time.Now()}
}

func TestReconcileWinScenario(t *testing.T) {
	result := Reconcile(snapshotOf(row(1, models.BetResultWin, 2.00, 60, 10)))

	require.Len(t, result.Updates, 1)
	assert.Empty(t, result.Conflicts)

	update := result.Updates[0]
	assert.Equal(t, 1, update.Position)
	assert.Equal(t, models.BetResultWin, update.Result)
	assert.Equal(t, 10.00, update.ProfitLoss)
	assert.Equal(t, 0.16, update.ForecastScore)
}

func TestReconcileLoss(t *testing.T) {
	result := Reconcile(snapshotOf(row(4, models.BetResultLoss, 2.75, 35, 12.5)))

	require.Len(t, result.Updates, 1)
	assert.Equal(t, 4, result.Updates[0].Position)
	assert.Equal(t, -12.5, result.Updates[0].ProfitLoss)
	assert.Equal(t, 0.1225, result.Updates[0].ForecastScore)
}

func TestReconcileSkipsPendingVoidAndSettled(t *testing.T) {
	settledPL := 5.0
	settledScore := 0.09
	settled := row(3, models.BetResultWin, 1.5, 70, 10)
	settled.Bet.ProfitLoss = &settledPL
	settled.Bet.ForecastScore = &settledScore
	settled.SettlementRecorded = true

	garbage := row(4, models.BetResultLoss, 3, 40, 10)
	garbage.SettlementRecorded = true
	garbage.MalformedFields = []string{"profit_loss"}

	result := Reconcile(snapshotOf(
		row(1, models.BetResultPending, 2, 50, 10),
		row(2, models.BetResultVoid, 2, 50, 10),
		settled,
		garbage,
	))

	assert.Empty(t, result.Updates)
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 4, result.Skipped)
}

func TestReconcileReportsConflicts(t *testing.T) {
	broken := row(2, models.BetResultWin, 0, 55, 0)
	broken.MalformedFields = []string{"odds", "stake", "notes"}

	brokenPending := row(3, models.BetResultPending, 0, 0, 0)
	brokenPending.MalformedFields = []string{"odds"}

	result := Reconcile(snapshotOf(row(1, models.BetResultWin, 3, 40, 10), broken, brokenPending))

	require.Len(t, result.Updates, 1)
	assert.Equal(t, 1, result.Updates[0].Position)

	require.Len(t, result.Conflicts, 1)
	conflict := result.Conflicts[0]
	assert.Equal(t, 2, conflict.Position)
	assert.Equal(t, []string{FieldOdds, FieldStake}, conflict.Fields)
	assert.Contains(t, conflict.Error(), "ledger row 2")
}

func TestReconcileOutOfRangeInputs(t *testing.T) {
	tests := []struct {
		name   string
		row    models.LedgerRow
		fields []string
	}{
		{"odds below one", row(1, models.BetResultWin, 0.5, 60, 10), []string{FieldOdds}},
		{"odds of exactly one", row(1, models.BetResultLoss, 1, 60, 10), []string{FieldOdds}},
		{"zero stake", row(1, models.BetResultWin, 2, 60, 0), []string{FieldStake}},
		{"negative stake", row(1, models.BetResultLoss, 2, 60, -5), []string{FieldStake}},
		{"probability above 100", row(1, models.BetResultWin, 2, 250, 10), []string{FieldStatedProbability}},
		{"negative probability", row(1, models.BetResultLoss, 2, -1, 10), []string{FieldStatedProbability}},
		{"several fields", row(1, models.BetResultWin, 0.9, 101, 0), []string{FieldOdds, FieldStake, FieldStatedProbability}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reconcile(snapshotOf(tt.row))

			assert.Empty(t, result.Updates)
			require.Len(t, result.Conflicts, 1)
			assert.Equal(t, tt.row.Position, result.Conflicts[0].Position)
			assert.Equal(t, tt.fields, result.Conflicts[0].Fields)
		})
	}
}

func TestReconcileBoundaryInputsSettle(t *testing.T) {
	result := Reconcile(snapshotOf(
		row(1, models.BetResultWin, 1.01, 0, 10),
		row(2, models.BetResultLoss, 2, 100, 0.01),
	))

	assert.Empty(t, result.Conflicts)
	require.Len(t, result.Updates, 2)
	assert.Equal(t, 0.1, result.Updates[0].ProfitLoss)
	assert.Equal(t, 1.0, result.Updates[0].ForecastScore)
	assert.Equal(t, -0.01, result.Updates[1].ProfitLoss)
	assert.Equal(t, 1.0, result.Updates[1].ForecastScore)
}

// Non-finite cells are flagged by the decoder, so they surface as conflicts
// rather than reaching the decimal arithmetic.
func TestReconcileNonFiniteCellsConflict(t *testing.T) {
	tests := []struct {
		name  string
		col   int
		cell  string
		field string
	}{
		{"NaN odds", ledger.ColOdds, "NaN", FieldOdds},
		{"infinite stake", ledger.ColStake, "Inf", FieldStake},
		{"NaN probability", ledger.ColStatedProbability, "NaN", FieldStatedProbability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := ledger.EncodeRow(row(5, models.BetResultWin, 2, 60, 10).Bet)
			cells[tt.col-1] = tt.cell

			var result Result
			require.NotPanics(t, func() {
				result = Reconcile(snapshotOf(ledger.DecodeRow(5, cells)))
			})

			assert.Empty(t, result.Updates)
			require.Len(t, result.Conflicts, 1)
			assert.Equal(t, 5, result.Conflicts[0].Position)
			assert.Equal(t, []string{tt.field}, result.Conflicts[0].Fields)
		})
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	snapshot := snapshotOf(
		row(1, models.BetResultWin, 2.2, 55, 20),
		row(2, models.BetResultLoss, 1.8, 65, 15),
		row(3, models.BetResultPending, 3.5, 30, 5),
		row(4, models.BetResultVoid, 2.0, 50, 10),
	)

	first := Reconcile(snapshot)
	require.Len(t, first.Updates, 2)

	applied := Apply(snapshot, first.Updates)
	second := Reconcile(applied)
	assert.Empty(t, second.Updates)
	assert.Empty(t, second.Conflicts)

	// the original snapshot is untouched
	assert.Nil(t, snapshot.Rows[0].Bet.ProfitLoss)
	assert.False(t, snapshot.Rows[0].SettlementRecorded)
}

func TestForecastScoreBounds(t *testing.T) {
	for prob := 0.0; prob <= 100; prob += 2.5 {
		for _, result := range []models.BetResult{models.BetResultWin, models.BetResultLoss} {
			score := ForecastScore(prob, result)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)

			exact := (result == models.BetResultWin && prob == 100) || (result == models.BetResultLoss && prob == 0)
			assert.Equal(t, exact, score == 0, "prob %.1f result %s", prob, result)
		}
	}
}

func TestProfitLoss(t *testing.T) {
	tests := []struct {
		name   string
		result models.BetResult
		stake  float64
		odds   float64
		want   float64
	}{
		{"win", models.BetResultWin, 10, 2.0, 10},
		{"win rounding", models.BetResultWin, 33.33, 1.91, 30.33},
		{"loss", models.BetResultLoss, 7.5, 4.2, -7.5},
		{"void", models.BetResultVoid, 10, 2.0, 0},
		{"pending", models.BetResultPending, 10, 2.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProfitLoss(tt.result, tt.stake, tt.odds))
		})
	}
}
