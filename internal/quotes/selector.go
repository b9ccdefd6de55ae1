// Package quotes picks the reference price for each side of a matchup from
// the bookmaker quotes supplied by the odds feed.
package quotes

import (
	"strings"

	"github.com/yourusername/value-lab/internal/models"
)

// Unavailable is the sentinel price for a side with no quote. Callers must
// treat it as "manual entry required", never as a real price.
const Unavailable = 0.0

// ReferenceQuote is the price per side selected to represent the market
type ReferenceQuote struct {
	SideAPrice float64 `json:"side_a_price"`
	SideBPrice float64 `json:"side_b_price"`
	Bookmaker  string  `json:"bookmaker"`
}

// Complete reports whether both sides carry a real price
func (r ReferenceQuote) Complete() bool {
	return r.SideAPrice != Unavailable && r.SideBPrice != Unavailable
}

// PriceFor returns the reference price of the named side, or Unavailable
func (r ReferenceQuote) PriceFor(m models.Matchup, side string) float64 {
	switch side {
	case m.HomeSide:
		return r.SideAPrice
	case m.AwaySide:
		return r.SideBPrice
	default:
		return Unavailable
	}
}

type selectorOptions struct {
	matchName func(a, b string) bool
}

// SelectorOption customises outcome matching
type SelectorOption func(*selectorOptions)

// WithNameNormalization matches outcome names ignoring case and repeated
// whitespace instead of requiring exact equality
func WithNameNormalization() SelectorOption {
	return func(o *selectorOptions) {
		o.matchName = func(a, b string) bool {
			return NormalizeName(a) == NormalizeName(b)
		}
	}
}

// NormalizeName folds a participant name to a canonical comparison form
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// SelectReferenceQuote picks one bookmaker for the matchup and reads its price
// for each side. Preferred bookmaker keys are tried in the given order; when
// none is present the first bookmaker in feed order is used.
func SelectReferenceQuote(m models.Matchup, preferred []string, opts ...SelectorOption) ReferenceQuote {
	options := selectorOptions{
		matchName: func(a, b string) bool { return a == b },
	}
	for _, opt := range opts {
		opt(&options)
	}

	bm, ok := chooseBookmaker(m.Bookmakers, preferred)
	if !ok {
		return ReferenceQuote{SideAPrice: Unavailable, SideBPrice: Unavailable}
	}

	ref := ReferenceQuote{
		SideAPrice: Unavailable,
		SideBPrice: Unavailable,
		Bookmaker:  bm.Key,
	}

	for _, outcome := range firstPricedMarket(bm) {
		switch {
		case ref.SideAPrice == Unavailable && options.matchName(outcome.Name, m.HomeSide):
			ref.SideAPrice = outcome.Price
		case ref.SideBPrice == Unavailable && options.matchName(outcome.Name, m.AwaySide):
			ref.SideBPrice = outcome.Price
		}
	}

	return ref
}

func chooseBookmaker(bookmakers []models.Bookmaker, preferred []string) (models.Bookmaker, bool) {
	if len(bookmakers) == 0 {
		return models.Bookmaker{}, false
	}
	for _, key := range preferred {
		for _, bm := range bookmakers {
			if bm.Key == key {
				return bm, true
			}
		}
	}
	return bookmakers[0], true
}

func firstPricedMarket(bm models.Bookmaker) []models.Outcome {
	for _, market := range bm.Markets {
		if len(market.Outcomes) > 0 {
			return market.Outcomes
		}
	}
	return nil
}
