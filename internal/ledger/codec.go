// Package ledger adapts the positional bet ledger (one 14-cell row per bet)
// to the domain model and back.
package ledger

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/value-lab/internal/models"
)

// Column positions are 1-based, matching the store's UpdateCell contract
const (
	ColEvent = iota + 1
	ColMatchup
	ColSelection
	ColBookmaker
	ColOdds
	ColImpliedProbability
	ColStatedProbability
	ColExpectedValue
	ColStake
	ColResult
	ColProfitLoss
	ColForecastScore
	ColDate
	ColNotes

	// ColumnCount is the fixed arity of every ledger row.
	ColumnCount = ColNotes
)

// DateLayout is the wire format of the date column
const DateLayout = "2006-01-02"

// Header lists the column names in wire order
var Header = []string{
	"Event", "Fight", "Selection", "Bookie", "Odds", "Implied_Prob", "My_Prob", "EV",
	"Bet_Amount", "Result", "Profit_Loss", "Brier_Score", "Date", "Notes",
}

// field names reported in LedgerRow.MalformedFields, indexed by column
var fieldNames = map[int]string{
	ColOdds:               "odds",
	ColImpliedProbability: "implied_probability",
	ColStatedProbability:  "stated_probability",
	ColExpectedValue:      "expected_value",
	ColStake:              "stake",
	ColResult:             "result",
	ColProfitLoss:         "profit_loss",
	ColForecastScore:      "forecast_score",
	ColDate:               "date",
}

// EncodeRow renders a bet as the 14 ledger cells in wire order
func EncodeRow(bet models.Bet) []string {
	row := make([]string, ColumnCount)
	row[ColEvent-1] = bet.Event
	row[ColMatchup-1] = bet.Matchup
	row[ColSelection-1] = bet.Selection
	row[ColBookmaker-1] = bet.Bookmaker
	row[ColOdds-1] = FormatNumber(bet.Odds)
	row[ColImpliedProbability-1] = FormatNumber(bet.ImpliedProbability)
	row[ColStatedProbability-1] = FormatNumber(bet.StatedProbability)
	row[ColExpectedValue-1] = FormatNumber(bet.ExpectedValue)
	row[ColStake-1] = FormatNumber(bet.Stake)
	row[ColResult-1] = EncodeResult(bet.Result)
	row[ColProfitLoss-1] = formatOptional(bet.ProfitLoss)
	row[ColForecastScore-1] = formatOptional(bet.ForecastScore)
	if !bet.CreatedAt.IsZero() {
		row[ColDate-1] = bet.CreatedAt.Format(DateLayout)
	}
	row[ColNotes-1] = bet.Notes
	return row
}

// DecodeRow parses one raw ledger row. Short rows are padded with empty
// cells; cells that fail to parse are listed in MalformedFields and left at
// their zero value.
func DecodeRow(position int, cells []string) models.LedgerRow {
	padded := make([]string, ColumnCount)
	copy(padded, cells)
	for i := range padded {
		padded[i] = strings.TrimSpace(padded[i])
	}

	d := decoder{cells: padded}
	bet := models.Bet{
		Event:              padded[ColEvent-1],
		Matchup:            padded[ColMatchup-1],
		Selection:          padded[ColSelection-1],
		Bookmaker:          padded[ColBookmaker-1],
		Odds:               d.number(ColOdds),
		ImpliedProbability: d.number(ColImpliedProbability),
		StatedProbability:  d.number(ColStatedProbability),
		ExpectedValue:      d.number(ColExpectedValue),
		Stake:              d.number(ColStake),
		Result:             d.result(),
		ProfitLoss:         d.optional(ColProfitLoss),
		ForecastScore:      d.optional(ColForecastScore),
		CreatedAt:          d.date(),
		Notes:              padded[ColNotes-1],
	}

	return models.LedgerRow{
		Position:           position,
		Bet:                bet,
		MalformedFields:    d.malformed,
		SettlementRecorded: padded[ColProfitLoss-1] != "",
	}
}

// EncodeResult renders a result cell: empty for pending, 1 for a win, 0 for a
// loss, "void" for a void bet
func EncodeResult(r models.BetResult) string {
	switch r {
	case models.BetResultWin:
		return "1"
	case models.BetResultLoss:
		return "0"
	case models.BetResultVoid:
		return "void"
	default:
		return ""
	}
}

// ParseResult parses a result cell
func ParseResult(cell string) (models.BetResult, bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "pending":
		return models.BetResultPending, true
	case "1", "1.0", "win", "w":
		return models.BetResultWin, true
	case "0", "0.0", "loss", "l":
		return models.BetResultLoss, true
	case "void", "v", "push":
		return models.BetResultVoid, true
	default:
		return models.BetResultPending, false
	}
}

// FormatNumber renders a numeric cell with the shortest exact representation
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatNumber(*v)
}

type decoder struct {
	cells     []string
	malformed []string
}

func (d *decoder) flag(col int) {
	d.malformed = append(d.malformed, fieldNames[col])
}

// parseFinite rejects NaN and infinities, which ParseFloat accepts.
func parseFinite(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (d *decoder) number(col int) float64 {
	v, ok := parseFinite(d.cells[col-1])
	if !ok {
		d.flag(col)
		return 0
	}
	return v
}

func (d *decoder) optional(col int) *float64 {
	cell := d.cells[col-1]
	if cell == "" {
		return nil
	}
	v, ok := parseFinite(cell)
	if !ok {
		d.flag(col)
		return nil
	}
	return &v
}

func (d *decoder) result() models.BetResult {
	r, ok := ParseResult(d.cells[ColResult-1])
	if !ok {
		d.flag(ColResult)
	}
	return r
}

func (d *decoder) date() time.Time {
	cell := d.cells[ColDate-1]
	if cell == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, cell)
	if err != nil {
		d.flag(ColDate)
		return time.Time{}
	}
	return t
}
