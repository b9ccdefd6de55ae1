// Package settlement derives the one-time settlement values of bets whose
// result has become known.
package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/value-lab/internal/models"
)

// Columns whose values the settlement formulas depend on
const (
	FieldOdds              = "odds"
	FieldStake             = "stake"
	FieldStatedProbability = "stated_probability"
)

var requiredFields = []string{FieldOdds, FieldStake, FieldStatedProbability}

// Result holds the settlement instructions for one reconciliation pass
type Result struct {
	Updates   []models.SettlementUpdate
	Conflicts []*models.ReconciliationConflict
	// Skipped counts rows that needed nothing: pending, void or already settled.
	Skipped int
}

// Reconcile scans the snapshot for bets with a win or loss result and no
// recorded settlement, and returns the values to write for each. The snapshot
// is not modified. Rows that already carry a profit/loss value are never
// recomputed, so applying the returned updates and reconciling again yields
// no further updates.
func Reconcile(snapshot models.LedgerSnapshot) Result {
	result := Result{
		Updates:   make([]models.SettlementUpdate, 0),
		Conflicts: make([]*models.ReconciliationConflict, 0),
	}

	for _, row := range snapshot.Rows {
		if !row.Bet.Result.IsTerminal() {
			result.Skipped++
			continue
		}
		if row.SettlementRecorded || row.Bet.ProfitLoss != nil {
			result.Skipped++
			continue
		}

		if bad := malformedInputs(row); len(bad) > 0 {
			result.Conflicts = append(result.Conflicts, &models.ReconciliationConflict{
				Position: row.Position,
				Result:   row.Bet.Result,
				Fields:   bad,
			})
			continue
		}

		update := Settle(row.Bet)
		update.Position = row.Position
		result.Updates = append(result.Updates, update)
	}

	return result
}

// Settle computes profit/loss and the Brier-style forecast score for a bet
// with a win or loss result.
func Settle(bet models.Bet) models.SettlementUpdate {
	return models.SettlementUpdate{
		Result:        bet.Result,
		ProfitLoss:    ProfitLoss(bet.Result, bet.Stake, bet.Odds),
		ForecastScore: ForecastScore(bet.StatedProbability, bet.Result),
	}
}

// ProfitLoss returns stake*(odds-1) for a win and -stake for a loss, rounded
// to 2 decimals. Other results return 0.
func ProfitLoss(result models.BetResult, stake, odds float64) float64 {
	s := decimal.NewFromFloat(stake)
	switch result {
	case models.BetResultWin:
		return s.Mul(decimal.NewFromFloat(odds).Sub(decimal.NewFromInt(1))).Round(2).InexactFloat64()
	case models.BetResultLoss:
		return s.Neg().Round(2).InexactFloat64()
	default:
		return 0
	}
}

// ForecastScore returns (p/100 - outcome)^2 rounded to 4 decimals, where the
// outcome is 1 for a win and 0 for a loss. Lower is better.
func ForecastScore(statedProbability float64, result models.BetResult) float64 {
	outcome := decimal.Zero
	if result == models.BetResultWin {
		outcome = decimal.NewFromInt(1)
	}
	diff := decimal.NewFromFloat(statedProbability).Div(decimal.NewFromInt(100)).Sub(outcome)
	return diff.Mul(diff).Round(4).InexactFloat64()
}

// Apply returns a copy of the snapshot with the updates written into the
// matching rows, mirroring what the ledger store holds afterwards.
func Apply(snapshot models.LedgerSnapshot, updates []models.SettlementUpdate) models.LedgerSnapshot {
	byPosition := make(map[int]models.SettlementUpdate, len(updates))
	for _, u := range updates {
		byPosition[u.Position] = u
	}

	rows := make([]models.LedgerRow, len(snapshot.Rows))
	for i, row := range snapshot.Rows {
		rows[i] = row
		u, ok := byPosition[row.Position]
		if !ok {
			continue
		}
		pl := u.ProfitLoss
		score := u.ForecastScore
		rows[i].Bet.ProfitLoss = &pl
		rows[i].Bet.ForecastScore = &score
		rows[i].SettlementRecorded = true
	}

	return models.LedgerSnapshot{Rows: rows, TakenAt: snapshot.TakenAt}
}

// malformedInputs lists the required fields that failed to parse or hold a
// value the settlement formulas cannot use.
func malformedInputs(row models.LedgerRow) []string {
	var bad []string
	for _, field := range requiredFields {
		if row.IsMalformed(field) || !inRange(field, row.Bet) {
			bad = append(bad, field)
		}
	}
	return bad
}

func inRange(field string, bet models.Bet) bool {
	switch field {
	case FieldOdds:
		return bet.Odds > 1
	case FieldStake:
		return bet.Stake > 0
	case FieldStatedProbability:
		return bet.StatedProbability >= 0 && bet.StatedProbability <= 100
	default:
		return true
	}
}
