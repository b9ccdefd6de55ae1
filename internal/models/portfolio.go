package models

import "time"

// ProfitPoint is one step of the cumulative profit curve
type ProfitPoint struct {
	Position   int       `json:"position"`
	Date       time.Time `json:"date"`
	ProfitLoss float64   `json:"profit_loss"`
	Cumulative float64   `json:"cumulative"`
}

// PortfolioSnapshot summarises the whole ledger. It is always recomputed from
// a ledger snapshot and has no lifecycle of its own.
type PortfolioSnapshot struct {
	TotalBets              int           `json:"total_bets"`
	SettledBets            int           `json:"settled_bets"`
	PendingBets            int           `json:"pending_bets"`
	TotalStaked            float64       `json:"total_staked"`
	TotalProfitLoss        float64       `json:"total_profit_loss"`
	ROIPercent             float64       `json:"roi_percent"`
	WinRate                float64       `json:"win_rate"`
	AverageForecastScore   *float64      `json:"average_forecast_score"`
	CumulativeProfitSeries []ProfitPoint `json:"cumulative_profit_series"`
	ComputedAt             time.Time     `json:"computed_at"`
}

// HasSettledBets reports whether any bet has settlement values
func (p *PortfolioSnapshot) HasSettledBets() bool {
	return p.AverageForecastScore != nil
}
