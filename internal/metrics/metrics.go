// Package metrics provides the Prometheus registry for ledger and portfolio metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "value_lab"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	BetsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_recorded_total",
		Help:      "Total number of bets appended to the ledger",
	})
	SettlementsAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlements_applied_total",
		Help:      "Total number of settlement updates written to the ledger by result",
	}, []string{"result"})
	ReconciliationConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciliation_conflicts_total",
		Help:      "Total number of settled rows with unparsable numeric fields",
	})
	PersistenceErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_errors_total",
		Help:      "Total number of ledger store failures by operation",
	}, []string{"op"})
	StaleSummariesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_summaries_total",
		Help:      "Total number of summaries served from the last good snapshot",
	})
)

// Gauge metrics
var (
	TotalProfitLoss = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "total_profit_loss",
		Help:      "Total realised profit and loss in currency units",
	})
	ROIPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roi_percent",
		Help:      "Return on total stake in percent",
	})
	WinRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "win_rate_percent",
		Help:      "Share of decided bets that won in percent",
	})
	AverageForecastScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "average_forecast_score",
		Help:      "Mean forecast score of settled bets",
	})
	PendingBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_bets",
		Help:      "Number of bets awaiting a result",
	})
)

// Histogram metrics
var (
	ReconciliationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconciliation_duration_seconds",
		Help:      "Duration of reconciliation runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(BetsRecordedTotal)
		registry.MustRegister(SettlementsAppliedTotal)
		registry.MustRegister(ReconciliationConflictsTotal)
		registry.MustRegister(PersistenceErrorsTotal)
		registry.MustRegister(StaleSummariesTotal)

		registry.MustRegister(TotalProfitLoss)
		registry.MustRegister(ROIPercent)
		registry.MustRegister(WinRate)
		registry.MustRegister(AverageForecastScore)
		registry.MustRegister(PendingBets)

		registry.MustRegister(ReconciliationDuration)

		// Collaborator metrics
		registry.MustRegister(FeedRequestsTotal)
		registry.MustRegister(FeedRequestDuration)
		registry.MustRegister(FeedCacheHitRatio)
		registry.MustRegister(AnalysisRequestsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(StreamClients)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBetRecorded records a bet appended to the ledger.
func RecordBetRecorded() {
	BetsRecordedTotal.Inc()
}

// RecordSettlementApplied records a settlement written for the given result.
func RecordSettlementApplied(result string) {
	SettlementsAppliedTotal.WithLabelValues(result).Inc()
}

// RecordReconciliationConflict records a row skipped because of malformed fields.
func RecordReconciliationConflict() {
	ReconciliationConflictsTotal.Inc()
}

// RecordPersistenceError records a failed ledger store operation.
func RecordPersistenceError(op string) {
	PersistenceErrorsTotal.WithLabelValues(op).Inc()
}

// RecordStaleSummary records a summary served from the last good snapshot.
func RecordStaleSummary() {
	StaleSummariesTotal.Inc()
}

// RecordReconciliationDuration records the duration of one reconciliation run.
func RecordReconciliationDuration(durationSeconds float64) {
	ReconciliationDuration.Observe(durationSeconds)
}

// UpdatePortfolio publishes the headline portfolio figures. A nil average
// score leaves the gauge unchanged.
func UpdatePortfolio(profitLoss, roi, winRate float64, averageScore *float64, pending int) {
	TotalProfitLoss.Set(profitLoss)
	ROIPercent.Set(roi)
	WinRate.Set(winRate)
	PendingBets.Set(float64(pending))
	if averageScore != nil {
		AverageForecastScore.Set(*averageScore)
	}
}
