package tracker

import (
	"context"
	"time"

	"github.com/yourusername/value-lab/internal/metrics"
	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/portfolio"
)

// Summary is the portfolio view served to the CLI, the API and stream clients
type Summary struct {
	models.PortfolioSnapshot
	MaxDrawdown          float64            `json:"max_drawdown"`
	ForecastDistribution []portfolio.Bucket `json:"forecast_distribution"`
	// Stale is set when the ledger could not be read and the last good
	// snapshot was used instead.
	Stale           bool      `json:"stale"`
	SnapshotTakenAt time.Time `json:"snapshot_taken_at"`
}

// Summary aggregates the current ledger. When the ledger cannot be read the
// last good snapshot is aggregated instead and the summary is flagged stale;
// without one the persistence error is returned.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	snapshot, err := s.ledger.Snapshot(ctx)
	stale := false
	if err != nil {
		s.recordPersistenceError(err)
		cached, ok := s.lastGoodSnapshot()
		if !ok {
			return nil, err
		}
		s.audit.LogStaleSnapshot(err)
		metrics.RecordStaleSummary()
		snapshot = cached
		stale = true
	} else {
		s.rememberSnapshot(snapshot)
	}

	summary := s.summarise(snapshot)
	summary.Stale = stale

	if !stale {
		metrics.UpdatePortfolio(
			summary.TotalProfitLoss,
			summary.ROIPercent,
			summary.WinRate,
			summary.AverageForecastScore,
			summary.PendingBets,
		)
	}
	return summary, nil
}

func (s *Service) summarise(snapshot models.LedgerSnapshot) *Summary {
	aggregate := portfolio.Aggregate(snapshot, s.opts.SeriesOrder)
	return &Summary{
		PortfolioSnapshot:    aggregate,
		MaxDrawdown:          portfolio.MaxDrawdown(aggregate.CumulativeProfitSeries),
		ForecastDistribution: portfolio.ForecastDistribution(snapshot.Rows, s.opts.DistributionBins),
		SnapshotTakenAt:      snapshot.TakenAt,
	}
}
