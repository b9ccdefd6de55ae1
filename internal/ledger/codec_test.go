package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-lab/internal/models"
)

func sampleBet() models.Bet {
	return models.Bet{
		Event:              "UFC 300",
		Matchup:            "Pereira vs Hill",
		Selection:          "Pereira",
		Bookmaker:          "pinnacle",
		Odds:               2,
		ImpliedProbability: 50,
		StatedProbability:  60,
		ExpectedValue:      20,
		Stake:              10,
		Result:             models.BetResultPending,
		CreatedAt:          time.Date(2025, 4, 13, 0, 0, 0, 0, time.UTC),
		Notes:              "main event",
	}
}

func TestEncodeRowLayout(t *testing.T) {
	row := EncodeRow(sampleBet())

	require.Len(t, row, ColumnCount)
	assert.Equal(t, []string{
		"UFC 300", "Pereira vs Hill", "Pereira", "pinnacle", "2", "50", "60", "20",
		"10", "", "", "", "2025-04-13", "main event",
	}, row)
	assert.Len(t, Header, ColumnCount)
}

func TestDecodeRowRoundTrip(t *testing.T) {
	bet := sampleBet()
	pl, score := 10.0, 0.16
	bet.Result = models.BetResultWin
	bet.ProfitLoss = &pl
	bet.ForecastScore = &score

	row := DecodeRow(3, EncodeRow(bet))

	assert.Equal(t, 3, row.Position)
	assert.Empty(t, row.MalformedFields)
	assert.True(t, row.SettlementRecorded)
	assert.Equal(t, bet, row.Bet)
}

func TestDecodeRowPadsShortRows(t *testing.T) {
	row := DecodeRow(1, []string{"UFC 300", "A vs B", "A", "bet365", "1.8", "55.56", "60", "8", "25", "1"})

	assert.Equal(t, models.BetResultWin, row.Bet.Result)
	assert.Nil(t, row.Bet.ProfitLoss)
	assert.Nil(t, row.Bet.ForecastScore)
	assert.False(t, row.SettlementRecorded)
	assert.True(t, row.Bet.CreatedAt.IsZero())
	assert.Empty(t, row.MalformedFields)
}

func TestDecodeRowMalformedCells(t *testing.T) {
	cells := EncodeRow(sampleBet())
	cells[ColOdds-1] = "evens"
	cells[ColStake-1] = ""
	cells[ColResult-1] = "maybe"
	cells[ColProfitLoss-1] = "n/a"
	cells[ColDate-1] = "13/04/2025"

	row := DecodeRow(1, cells)

	assert.True(t, row.IsMalformed("odds"))
	assert.True(t, row.IsMalformed("stake"))
	assert.True(t, row.IsMalformed("result"))
	assert.True(t, row.IsMalformed("profit_loss"))
	assert.True(t, row.IsMalformed("date"))
	assert.False(t, row.IsMalformed("stated_probability"))
	assert.Equal(t, models.BetResultPending, row.Bet.Result)
	assert.Nil(t, row.Bet.ProfitLoss)
	assert.True(t, row.SettlementRecorded)
}

func TestDecodeRowNonFiniteCells(t *testing.T) {
	tests := []struct {
		name  string
		col   int
		cell  string
		field string
	}{
		{"NaN odds", ColOdds, "NaN", "odds"},
		{"infinite stake", ColStake, "Inf", "stake"},
		{"positive infinite stake", ColStake, "+Inf", "stake"},
		{"NaN stated probability", ColStatedProbability, "nan", "stated_probability"},
		{"negative infinite profit", ColProfitLoss, "-Inf", "profit_loss"},
		{"infinite forecast score", ColForecastScore, "Infinity", "forecast_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bet := sampleBet()
			bet.Result = models.BetResultWin
			cells := EncodeRow(bet)
			cells[tt.col-1] = tt.cell

			row := DecodeRow(1, cells)

			assert.True(t, row.IsMalformed(tt.field))
			assert.Equal(t, []string{tt.field}, row.MalformedFields)
		})
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		cell     string
		expected models.BetResult
		ok       bool
	}{
		{"", models.BetResultPending, true},
		{"1", models.BetResultWin, true},
		{"1.0", models.BetResultWin, true},
		{"Win", models.BetResultWin, true},
		{"0", models.BetResultLoss, true},
		{"0.0", models.BetResultLoss, true},
		{" loss ", models.BetResultLoss, true},
		{"void", models.BetResultVoid, true},
		{"2", models.BetResultPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			result, ok := ParseResult(tt.cell)
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestEncodeResult(t *testing.T) {
	assert.Equal(t, "", EncodeResult(models.BetResultPending))
	assert.Equal(t, "1", EncodeResult(models.BetResultWin))
	assert.Equal(t, "0", EncodeResult(models.BetResultLoss))
	assert.Equal(t, "void", EncodeResult(models.BetResultVoid))
}
