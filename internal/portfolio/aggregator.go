// Package portfolio folds a ledger snapshot into reporting statistics.
package portfolio

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/value-lab/internal/models"
)

// Aggregate computes the portfolio summary of the snapshot. The cumulative
// profit series follows the requested order.
func Aggregate(snapshot models.LedgerSnapshot, order SeriesOrder) models.PortfolioSnapshot {
	var (
		staked     = decimal.Zero
		profitLoss = decimal.Zero
		scoreSum   = decimal.Zero
		scored     int
		wins       int
		losses     int
	)

	for _, row := range snapshot.Rows {
		bet := row.Bet
		staked = staked.Add(decimal.NewFromFloat(bet.Stake))
		profitLoss = profitLoss.Add(decimal.NewFromFloat(bet.SettledProfitLoss()))

		switch bet.Result {
		case models.BetResultWin:
			wins++
		case models.BetResultLoss:
			losses++
		}

		if bet.IsSettled() {
			scoreSum = scoreSum.Add(decimal.NewFromFloat(*bet.ForecastScore))
			scored++
		}
	}

	summary := models.PortfolioSnapshot{
		TotalBets:              len(snapshot.Rows),
		SettledBets:            scored,
		PendingBets:            len(snapshot.Pending()),
		TotalStaked:            staked.Round(2).InexactFloat64(),
		TotalProfitLoss:        profitLoss.Round(2).InexactFloat64(),
		CumulativeProfitSeries: CumulativeProfit(snapshot.Rows, order),
		ComputedAt:             time.Now(),
	}

	if staked.IsPositive() {
		summary.ROIPercent = profitLoss.Div(staked).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	if decided := wins + losses; decided > 0 {
		summary.WinRate = decimal.NewFromInt(int64(wins)).
			Div(decimal.NewFromInt(int64(decided))).
			Mul(decimal.NewFromInt(100)).
			Round(2).InexactFloat64()
	}

	if scored > 0 {
		avg := scoreSum.Div(decimal.NewFromInt(int64(scored))).Round(4).InexactFloat64()
		summary.AverageForecastScore = &avg
	}

	return summary
}

// FormatForecastScore renders the average forecast score, using a dash when
// no bet has settled. Zero would read as perfect accuracy.
func FormatForecastScore(score *float64) string {
	if score == nil {
		return "—"
	}
	return fmt.Sprintf("%.3f", *score)
}
