package oddsfeed

import (
	"fmt"

	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/quotes"
)

// FindMatchup locates a matchup by its "Home vs Away" label. With
// normalize set, case and surrounding whitespace are ignored.
func FindMatchup(matchups []models.Matchup, label string, normalize bool) (models.Matchup, error) {
	want := label
	if normalize {
		want = quotes.NormalizeName(label)
	}

	for _, m := range matchups {
		got := m.Label()
		if normalize {
			got = quotes.NormalizeName(got)
		}
		if got == want {
			return m, nil
		}
	}
	return models.Matchup{}, fmt.Errorf("matchup %q: %w", label, models.ErrNotFound)
}
