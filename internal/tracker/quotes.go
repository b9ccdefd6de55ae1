package tracker

import (
	"context"
	"fmt"

	"github.com/yourusername/value-lab/internal/analysis"
	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/oddsfeed"
	"github.com/yourusername/value-lab/internal/quotes"
)

// Prefill holds the suggested bookmaker and price for a new entry. Odds of
// quotes.Unavailable mean the price must be typed in manually.
type Prefill struct {
	Matchup   string  `json:"matchup"`
	Selection string  `json:"selection"`
	Bookmaker string  `json:"bookmaker"`
	Odds      float64 `json:"odds"`
}

// MatchupQuote pairs a feed matchup with its reference quote
type MatchupQuote struct {
	Matchup models.Matchup        `json:"matchup"`
	Quote   quotes.ReferenceQuote `json:"quote"`
}

// PrefillEntry looks up the reference price for the selected side of a
// matchup. A feed outage returns the sentinel price together with an error
// wrapping ErrFeedUnavailable; callers may still proceed manually.
func (s *Service) PrefillEntry(ctx context.Context, label, selection string) (Prefill, error) {
	prefill := Prefill{Matchup: label, Selection: selection, Odds: quotes.Unavailable}

	matchups, err := s.fetchMatchups(ctx)
	if err != nil {
		return prefill, err
	}

	m, err := oddsfeed.FindMatchup(matchups, label, s.opts.NormalizeNames)
	if err != nil {
		return prefill, err
	}

	ref := quotes.SelectReferenceQuote(m, s.opts.PreferredBookmakers, s.selectorOptions()...)
	prefill.Matchup = m.Label()
	prefill.Bookmaker = ref.Bookmaker
	prefill.Odds = s.priceFor(ref, m, selection)
	return prefill, nil
}

// ReferenceQuotes returns every feed matchup with its selected reference quote
func (s *Service) ReferenceQuotes(ctx context.Context) ([]MatchupQuote, error) {
	matchups, err := s.fetchMatchups(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]MatchupQuote, 0, len(matchups))
	for _, m := range matchups {
		result = append(result, MatchupQuote{
			Matchup: m,
			Quote:   quotes.SelectReferenceQuote(m, s.opts.PreferredBookmakers, s.selectorOptions()...),
		})
	}
	return result, nil
}

// Analyze asks the analysis service about one matchup and returns its text verbatim
func (s *Service) Analyze(ctx context.Context, label string) (string, error) {
	if s.analyzer == nil {
		return "", fmt.Errorf("%w: analysis is disabled", models.ErrAnalysisUnavailable)
	}

	matchups, err := s.fetchMatchups(ctx)
	if err != nil {
		return "", err
	}
	m, err := oddsfeed.FindMatchup(matchups, label, s.opts.NormalizeNames)
	if err != nil {
		return "", err
	}

	prompt, err := analysis.BuildPrompt(s.opts.AnalysisInstructions, m)
	if err != nil {
		return "", err
	}
	return s.analyzer.Analyze(ctx, prompt)
}

func (s *Service) fetchMatchups(ctx context.Context) ([]models.Matchup, error) {
	if s.feed == nil {
		return nil, fmt.Errorf("%w: odds feed is not configured", models.ErrFeedUnavailable)
	}
	return s.feed.FetchMatchups(ctx)
}

func (s *Service) selectorOptions() []quotes.SelectorOption {
	if s.opts.NormalizeNames {
		return []quotes.SelectorOption{quotes.WithNameNormalization()}
	}
	return nil
}

func (s *Service) priceFor(ref quotes.ReferenceQuote, m models.Matchup, selection string) float64 {
	if !s.opts.NormalizeNames {
		return ref.PriceFor(m, selection)
	}
	switch quotes.NormalizeName(selection) {
	case quotes.NormalizeName(m.HomeSide):
		return ref.SideAPrice
	case quotes.NormalizeName(m.AwaySide):
		return ref.SideBPrice
	default:
		return quotes.Unavailable
	}
}
