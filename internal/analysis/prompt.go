// Package analysis asks a natural-language analysis service for a matchup
// breakdown. The returned text is shown to the user as-is.
package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yourusername/value-lab/internal/models"
)

// DefaultInstructions opens every analysis prompt unless overridden in config
const DefaultInstructions = "You are a professional sports betting analyst. " +
	"Review the matchup and the bookmaker prices below. Summarise each side's " +
	"chances, point out where the market may be mispriced, and state the " +
	"probability you would assign to each side."

// BuildPrompt renders the prompt for one matchup: the instructions, the
// matchup label and the feed snapshot serialised as JSON
func BuildPrompt(instructions string, m models.Matchup) (string, error) {
	if strings.TrimSpace(instructions) == "" {
		instructions = DefaultInstructions
	}

	snapshot, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialise matchup: %w", err)
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nMatchup: ")
	b.WriteString(m.Label())
	b.WriteString("\n\nOdds data:\n")
	b.Write(snapshot)
	b.WriteString("\n")
	return b.String(), nil
}
