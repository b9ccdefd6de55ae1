package models

import "time"

// LedgerRow is one decoded ledger record together with its row identity
type LedgerRow struct {
	// Position is the 1-based data row (header excluded).
	Position int `json:"position"`
	Bet      Bet `json:"bet"`
	// MalformedFields names the columns whose raw cell could not be parsed.
	MalformedFields []string `json:"malformed_fields,omitempty"`
	// SettlementRecorded is true when the profit/loss cell holds any value,
	// parseable or not.
	SettlementRecorded bool `json:"settlement_recorded"`
}

// IsMalformed reports whether the named column failed to parse
func (r LedgerRow) IsMalformed(field string) bool {
	for _, f := range r.MalformedFields {
		if f == field {
			return true
		}
	}
	return false
}

// LedgerSnapshot is a point-in-time copy of the whole ledger
type LedgerSnapshot struct {
	Rows    []LedgerRow `json:"rows"`
	TakenAt time.Time   `json:"taken_at"`
}

// Len returns the number of rows in the snapshot
func (s LedgerSnapshot) Len() int {
	return len(s.Rows)
}

// Pending returns the rows still awaiting a result
func (s LedgerSnapshot) Pending() []LedgerRow {
	pending := make([]LedgerRow, 0)
	for _, row := range s.Rows {
		if row.Bet.Result == BetResultPending {
			pending = append(pending, row)
		}
	}
	return pending
}

// SettlementUpdate instructs the ledger store to record settlement values for one row
type SettlementUpdate struct {
	Position      int       `json:"position"`
	Result        BetResult `json:"result"`
	ProfitLoss    float64   `json:"profit_loss"`
	ForecastScore float64   `json:"forecast_score"`
}
