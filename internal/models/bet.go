package models

import (
	"time"
)

// BetResult represents the real-world outcome of a wagered selection
type BetResult string

const (
	BetResultPending BetResult = "pending"
	BetResultWin     BetResult = "win"
	BetResultLoss    BetResult = "loss"
	BetResultVoid    BetResult = "void"
)

// IsTerminal reports whether the result settles the bet with a profit or loss.
// Void bets are closed but never settle.
func (r BetResult) IsTerminal() bool {
	return r == BetResultWin || r == BetResultLoss
}

// Bet represents one wagered selection as recorded in the ledger
type Bet struct {
	Event              string    `json:"event"`
	Matchup            string    `json:"matchup"`
	Selection          string    `json:"selection"`
	Bookmaker          string    `json:"bookmaker"`
	Odds               float64   `json:"odds"`
	ImpliedProbability float64   `json:"implied_probability"`
	StatedProbability  float64   `json:"stated_probability"`
	ExpectedValue      float64   `json:"expected_value"`
	Stake              float64   `json:"stake"`
	Result             BetResult `json:"result"`
	ProfitLoss         *float64  `json:"profit_loss"`
	ForecastScore      *float64  `json:"forecast_score"`
	CreatedAt          time.Time `json:"created_at"`
	Notes              string    `json:"notes"`
}

// BetEntry holds the user-supplied fields of a new bet before derived
// metrics are computed
type BetEntry struct {
	Event             string  `json:"event" validate:"required"`
	Matchup           string  `json:"matchup" validate:"required"`
	Selection         string  `json:"selection" validate:"required"`
	Bookmaker         string  `json:"bookmaker"`
	Odds              float64 `json:"odds"`
	StatedProbability float64 `json:"stated_probability"`
	Stake             float64 `json:"stake" validate:"gt=0"`
	Notes             string  `json:"notes"`
}

// IsSettled checks if settlement values have been recorded
func (b *Bet) IsSettled() bool {
	return b.ProfitLoss != nil && b.ForecastScore != nil
}

// SettledProfitLoss returns the recorded profit or loss, treating an unsettled bet as zero
func (b *Bet) SettledProfitLoss() float64 {
	if b.ProfitLoss == nil {
		return 0
	}
	return *b.ProfitLoss
}

// HasEdge reports whether the bettor's estimate beats the market-implied price
func (b *Bet) HasEdge() bool {
	return b.ExpectedValue > 0
}
