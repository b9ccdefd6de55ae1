package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/value-lab/internal/models"
)

// SeriesOrder selects how ledger rows are ordered before accumulating profit
type SeriesOrder string

const (
	// InsertionOrder keeps ledger order.
	InsertionOrder SeriesOrder = "insertion"
	// ChronologicalOrder sorts by bet date, keeping ledger order within a day.
	ChronologicalOrder SeriesOrder = "chronological"
)

// ParseSeriesOrder parses a configured ordering name
func ParseSeriesOrder(s string) (SeriesOrder, error) {
	switch SeriesOrder(s) {
	case InsertionOrder, "":
		return InsertionOrder, nil
	case ChronologicalOrder:
		return ChronologicalOrder, nil
	default:
		return "", fmt.Errorf("unknown series order %q", s)
	}
}

// CumulativeProfit returns the running sum of profit/loss, treating unsettled
// bets as zero
func CumulativeProfit(rows []models.LedgerRow, order SeriesOrder) []models.ProfitPoint {
	ordered := make([]models.LedgerRow, len(rows))
	copy(ordered, rows)
	if order == ChronologicalOrder {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Bet.CreatedAt.Before(ordered[j].Bet.CreatedAt)
		})
	}

	series := make([]models.ProfitPoint, 0, len(ordered))
	running := decimal.Zero
	for _, row := range ordered {
		pl := decimal.NewFromFloat(row.Bet.SettledProfitLoss())
		running = running.Add(pl)
		series = append(series, models.ProfitPoint{
			Position:   row.Position,
			Date:       row.Bet.CreatedAt,
			ProfitLoss: pl.Round(2).InexactFloat64(),
			Cumulative: running.Round(2).InexactFloat64(),
		})
	}
	return series
}

// MaxDrawdown returns the largest peak-to-trough fall of the cumulative curve,
// in currency units
func MaxDrawdown(series []models.ProfitPoint) float64 {
	maxDD := decimal.Zero
	peak := decimal.Zero
	for _, p := range series {
		cumulative := decimal.NewFromFloat(p.Cumulative)
		if cumulative.GreaterThan(peak) {
			peak = cumulative
		}
		if drawdown := peak.Sub(cumulative); drawdown.GreaterThan(maxDD) {
			maxDD = drawdown
		}
	}
	return maxDD.Round(2).InexactFloat64()
}

// SeriesToCSV exports the cumulative profit series to CSV
func SeriesToCSV(series []models.ProfitPoint) string {
	var buf bytes.Buffer
	buf.WriteString("position,date,profit_loss,cumulative\n")
	for _, point := range series {
		buf.WriteString(strconv.Itoa(point.Position))
		buf.WriteString(",")
		buf.WriteString(point.Date.Format(time.DateOnly))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatFloat(point.ProfitLoss, 'f', 2, 64))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatFloat(point.Cumulative, 'f', 2, 64))
		buf.WriteString("\n")
	}
	return buf.String()
}

// SeriesToJSON exports the cumulative profit series to JSON
func SeriesToJSON(series []models.ProfitPoint) (string, error) {
	data, err := json.MarshalIndent(series, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode profit series: %w", err)
	}
	return string(data), nil
}
