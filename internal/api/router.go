// Package api exposes the tracker over HTTP for the dashboard.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/metrics"
	"github.com/yourusername/value-lab/internal/tracker"
)

// SummaryPublisher receives the summary after a manual reconcile
type SummaryPublisher interface {
	PublishSummary(summary *tracker.Summary)
}

// RouterConfig wires the router's collaborators. Stream and MetricsPath are
// optional.
type RouterConfig struct {
	Service        *tracker.Service
	Publisher      SummaryPublisher
	Stream         http.HandlerFunc
	MetricsPath    string
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *logrus.Logger
}

// NewRouter builds the HTTP routes
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	h := NewHandler(cfg.Service, cfg.Publisher, cfg.Logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if cfg.Stream != nil {
		r.Get("/ws/portfolio", cfg.Stream)
	}
	if cfg.MetricsPath != "" {
		r.Handle(cfg.MetricsPath, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

		r.Get("/portfolio", h.GetPortfolio)

		r.Get("/bets", h.ListBets)
		r.Post("/bets", h.CreateBet)
		r.Post("/bets/{position}/result", h.SetResult)

		r.Post("/reconcile", h.Reconcile)

		r.Get("/quotes", h.ListQuotes)
		r.Get("/quotes/prefill", h.Prefill)

		r.Post("/analysis", h.Analyze)
	})

	return r
}

// requestLogger logs one line per request with logrus
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"component":  "api",
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": chimiddleware.GetReqID(r.Context()),
			}).Debug("HTTP request")
		})
	}
}
