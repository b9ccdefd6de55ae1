package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/analysis"
	"github.com/yourusername/value-lab/internal/config"
	"github.com/yourusername/value-lab/internal/database"
	"github.com/yourusername/value-lab/internal/httpclient"
	"github.com/yourusername/value-lab/internal/ledger"
	"github.com/yourusername/value-lab/internal/logger"
	"github.com/yourusername/value-lab/internal/metrics"
	"github.com/yourusername/value-lab/internal/oddsfeed"
	"github.com/yourusername/value-lab/internal/portfolio"
	"github.com/yourusername/value-lab/internal/tracker"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	db      *database.DB
	feed    *oddsfeed.CachedProvider
	clients []*httpclient.RateLimitedHTTPClient
	tracker *tracker.Service
}

// newApp loads configuration and wires the ledger, collaborators and tracker
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		log: logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment),
	}
	metrics.InitRegistry()

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	feedHTTP := a.httpClient("odds_feed", cfg.OddsFeed.TimeoutSeconds, cfg.OddsFeed.RetryAttempts, cfg.OddsFeed.RateLimitPerSecond)
	feedClient := oddsfeed.NewClient(oddsfeed.ClientConfig{
		BaseURL: cfg.OddsFeed.APIURL,
		APIKey:  cfg.OddsFeed.APIKey,
		Sport:   cfg.OddsFeed.Sport,
		Regions: cfg.OddsFeed.Regions,
	}, feedHTTP, a.log)
	a.feed = oddsfeed.NewCachedProvider(feedClient, cfg.OddsFeed.Sport, cfg.FeedCacheTTL())

	var analyzer analysis.Analyzer
	if cfg.Analysis.Enabled {
		analysisHTTP := a.httpClient("analysis", cfg.Analysis.TimeoutSeconds, 1, 1)
		analyzer = analysis.NewGeminiClient(analysis.GeminiConfig{
			BaseURL: cfg.Analysis.APIURL,
			APIKey:  cfg.Analysis.APIKey,
			Model:   cfg.Analysis.Model,
		}, analysisHTTP, a.log)
	}

	order, err := portfolio.ParseSeriesOrder(cfg.Portfolio.SeriesOrder)
	if err != nil {
		return nil, err
	}

	a.tracker = tracker.NewService(ledger.New(store), a.feed, analyzer, tracker.Options{
		PreferredBookmakers:  cfg.OddsFeed.PreferredBookmakers,
		NormalizeNames:       cfg.OddsFeed.NormalizeNames,
		SeriesOrder:          order,
		DistributionBins:     cfg.Portfolio.DistributionBins,
		AnalysisInstructions: cfg.Analysis.Instructions,
		LastGoodTTL:          time.Duration(cfg.Portfolio.LastGoodTTLSeconds) * time.Second,
	}, a.log)

	a.log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"backend":     cfg.Ledger.Backend,
		"sport":       cfg.OddsFeed.Sport,
		"analysis":    cfg.Analysis.Enabled,
	}).Debug("Value lab initialised")

	return a, nil
}

func (a *app) openStore(ctx context.Context) (ledger.Store, error) {
	if !a.cfg.UsesPostgres() {
		a.log.Warn("Using in-memory ledger; bets are lost when the process exits")
		return ledger.NewMemoryStore(), nil
	}

	db, err := database.Initialize(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	a.db = db
	a.log.Info("Ledger database connection established")
	return ledger.NewPostgresStore(db), nil
}

func (a *app) httpClient(name string, timeoutSeconds, retries int, ratePerSecond float64) *httpclient.RateLimitedHTTPClient {
	cfg := httpclient.DefaultConfig(name)
	if timeoutSeconds > 0 {
		cfg.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	cfg.MaxRetries = retries
	if ratePerSecond > 0 {
		cfg.RateLimit = ratePerSecond
	}
	client := httpclient.New(cfg, a.log)
	a.clients = append(a.clients, client)
	return client
}

// Close releases the database pool and HTTP clients
func (a *app) Close() {
	for _, c := range a.clients {
		_ = c.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
