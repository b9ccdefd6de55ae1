package metrics

import "github.com/prometheus/client_golang/prometheus"

// Odds feed and analysis service metrics
var (
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_requests_total",
		Help:      "Total number of odds feed requests by sport and outcome",
	}, []string{"sport", "outcome"})

	FeedRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_request_duration_seconds",
		Help:      "Latency of odds feed requests in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"sport"})

	FeedCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_cache_hit_ratio",
		Help:      "Hit ratio of the odds feed snapshot cache",
	})

	AnalysisRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_requests_total",
		Help:      "Total number of analysis requests by outcome",
	}, []string{"outcome"})

	CircuitBreakerTripsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP circuit breaker trips by client",
	}, []string{"client"})

	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_clients",
		Help:      "Number of connected portfolio stream clients",
	})
)

// RecordFeedRequest records one odds feed request.
func RecordFeedRequest(sport, outcome string, durationSeconds float64) {
	FeedRequestsTotal.WithLabelValues(sport, outcome).Inc()
	FeedRequestDuration.WithLabelValues(sport).Observe(durationSeconds)
}

// UpdateFeedCacheHitRatio sets the feed cache hit ratio.
func UpdateFeedCacheHitRatio(ratio float64) {
	FeedCacheHitRatio.Set(ratio)
}

// RecordAnalysisRequest records one analysis request.
func RecordAnalysisRequest(outcome string) {
	AnalysisRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker opening.
func RecordCircuitBreakerTrip(client string) {
	CircuitBreakerTripsTotal.WithLabelValues(client).Inc()
}

// UpdateStreamClients sets the number of connected stream clients.
func UpdateStreamClients(count int) {
	StreamClients.Set(float64(count))
}
