// Package valuation derives the entry-time metrics of a bet: the
// market-implied probability of the quoted price and the bettor's expected
// value under their own probability estimate.
package valuation

import (
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yourusername/value-lab/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)

	entryValidator = validator.New()
)

// EntryMetrics holds the values derived when a bet is placed
type EntryMetrics struct {
	ImpliedProbability float64 `json:"implied_probability"`
	ExpectedValue      float64 `json:"expected_value"`
}

// ComputeAtEntry returns the implied probability (100/odds) and the expected
// value in percent ((p/100*odds - 1) * 100), both rounded to 2 decimals.
func ComputeAtEntry(odds, statedProbability float64) (EntryMetrics, error) {
	if math.IsNaN(odds) || math.IsInf(odds, 0) || odds <= 1.0 {
		return EntryMetrics{}, models.NewValidationError("odds", odds, "must be a decimal price greater than 1.0")
	}
	if math.IsNaN(statedProbability) || statedProbability < 0 || statedProbability > 100 {
		return EntryMetrics{}, models.NewValidationError("stated_probability", statedProbability, "must be between 0 and 100")
	}

	price := decimal.NewFromFloat(odds)
	prob := decimal.NewFromFloat(statedProbability).Div(hundred)

	implied := hundred.Div(price).Round(2)
	ev := prob.Mul(price).Sub(one).Mul(hundred).Round(2)

	return EntryMetrics{
		ImpliedProbability: implied.InexactFloat64(),
		ExpectedValue:      ev.InexactFloat64(),
	}, nil
}

// NewBet validates a user entry and turns it into a pending bet carrying its
// entry-time metrics. No bet is returned when any field is invalid.
func NewBet(entry models.BetEntry, now time.Time) (models.Bet, error) {
	if err := entryValidator.Struct(entry); err != nil {
		return models.Bet{}, toValidationError(err, entry)
	}
	if math.IsInf(entry.Stake, 0) {
		return models.Bet{}, models.NewValidationError("stake", entry.Stake, "must be a finite amount")
	}

	metrics, err := ComputeAtEntry(entry.Odds, entry.StatedProbability)
	if err != nil {
		return models.Bet{}, err
	}

	return models.Bet{
		Event:              entry.Event,
		Matchup:            entry.Matchup,
		Selection:          entry.Selection,
		Bookmaker:          entry.Bookmaker,
		Odds:               entry.Odds,
		ImpliedProbability: metrics.ImpliedProbability,
		StatedProbability:  entry.StatedProbability,
		ExpectedValue:      metrics.ExpectedValue,
		Stake:              entry.Stake,
		Result:             models.BetResultPending,
		CreatedAt:          truncateToDate(now),
		Notes:              entry.Notes,
	}, nil
}

// toValidationError maps the first validator failure onto a ValidationError
func toValidationError(err error, entry models.BetEntry) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return models.NewValidationError("entry", entry, err.Error())
	}

	fieldError := validationErrors[0]
	field := jsonFieldName(fieldError.StructField())
	switch fieldError.Tag() {
	case "required":
		return models.NewValidationError(field, fieldError.Value(), "is required")
	case "gt":
		return models.NewValidationError(field, fieldError.Value(), "must be greater than "+fieldError.Param())
	default:
		return models.NewValidationError(field, fieldError.Value(), "failed "+fieldError.Tag()+" check")
	}
}

func jsonFieldName(structField string) string {
	switch structField {
	case "Event":
		return "event"
	case "Matchup":
		return "matchup"
	case "Selection":
		return "selection"
	case "Stake":
		return "stake"
	default:
		return structField
	}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
