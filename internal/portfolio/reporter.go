package portfolio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/value-lab/internal/models"
)

// DefaultDistributionBins matches the forecast accuracy histogram of the dashboard
const DefaultDistributionBins = 10

// Bucket is one bin of the forecast score distribution
type Bucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// GenerateConsoleReport formats the portfolio summary for terminal output
func GenerateConsoleReport(summary models.PortfolioSnapshot) string {
	var builder strings.Builder
	builder.WriteString("Portfolio Summary\n")
	builder.WriteString("=================\n")
	builder.WriteString(fmt.Sprintf("Total Bets: %d (%d pending)\n", summary.TotalBets, summary.PendingBets))
	builder.WriteString(fmt.Sprintf("Total Staked: %.2f\n", summary.TotalStaked))
	builder.WriteString(fmt.Sprintf("Total P&L: %.2f\n", summary.TotalProfitLoss))
	builder.WriteString(fmt.Sprintf("ROI: %.1f%%\n", summary.ROIPercent))
	builder.WriteString(fmt.Sprintf("Win Rate: %.1f%%\n", summary.WinRate))
	builder.WriteString(fmt.Sprintf("Accuracy (Brier): %s\n", FormatForecastScore(summary.AverageForecastScore)))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f\n", MaxDrawdown(summary.CumulativeProfitSeries)))
	return builder.String()
}

// GenerateCSVExport writes the cumulative profit series for spreadsheets
func GenerateCSVExport(summary models.PortfolioSnapshot, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(SeriesToCSV(summary.CumulativeProfitSeries)), 0o644)
}

// GenerateJSONExport writes the cumulative profit series as a JSON array
func GenerateJSONExport(summary models.PortfolioSnapshot, outputPath string) error {
	data, err := SeriesToJSON(summary.CumulativeProfitSeries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(data), 0o644)
}

// ForecastDistribution bins the forecast scores of settled bets over [0,1]
func ForecastDistribution(rows []models.LedgerRow, bins int) []Bucket {
	if bins <= 0 {
		bins = DefaultDistributionBins
	}

	width := 1.0 / float64(bins)
	buckets := make([]Bucket, bins)
	for i := range buckets {
		buckets[i] = Bucket{
			Lower: roundTo(float64(i)*width, 4),
			Upper: roundTo(float64(i+1)*width, 4),
		}
	}

	for _, row := range rows {
		if !row.Bet.IsSettled() {
			continue
		}
		idx := int(math.Floor(*row.Bet.ForecastScore / width))
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
	}

	return buckets
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
