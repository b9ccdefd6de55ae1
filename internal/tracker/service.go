// Package tracker coordinates the ledger, the odds feed and the analysis
// service around the pure valuation, settlement and portfolio components.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/analysis"
	"github.com/yourusername/value-lab/internal/ledger"
	"github.com/yourusername/value-lab/internal/logger"
	"github.com/yourusername/value-lab/internal/metrics"
	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/oddsfeed"
	"github.com/yourusername/value-lab/internal/portfolio"
	"github.com/yourusername/value-lab/internal/valuation"
)

const lastGoodKey = "ledger"

// Options tune quote selection, reporting and the stale-summary fallback
type Options struct {
	PreferredBookmakers  []string
	NormalizeNames       bool
	SeriesOrder          portfolio.SeriesOrder
	DistributionBins     int
	AnalysisInstructions string
	// LastGoodTTL bounds how long a stale snapshot may be served; zero keeps it indefinitely.
	LastGoodTTL time.Duration
}

// Service is the application layer behind the CLI and the HTTP API
type Service struct {
	ledger   *ledger.Ledger
	feed     oddsfeed.Provider
	analyzer analysis.Analyzer
	opts     Options

	lastGood *cache.Cache
	audit    *logger.LedgerLogger
	logger   *logrus.Entry
	now      func() time.Time

	// reconcileMu serialises reconciliation runs within the process
	reconcileMu sync.Mutex
}

// NewService creates a tracker service. feed and analyzer may be nil when
// the collaborator is not configured.
func NewService(l *ledger.Ledger, feed oddsfeed.Provider, analyzer analysis.Analyzer, opts Options, log *logrus.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if opts.SeriesOrder == "" {
		opts.SeriesOrder = portfolio.InsertionOrder
	}
	ttl := opts.LastGoodTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	return &Service{
		ledger:   l,
		feed:     feed,
		analyzer: analyzer,
		opts:     opts,
		lastGood: cache.New(ttl, 10*time.Minute),
		audit:    logger.NewLedgerLogger(log),
		logger:   log.WithField("component", "tracker"),
		now:      time.Now,
	}
}

// RecordBet validates an entry, derives its metrics and appends it as a
// pending bet
func (s *Service) RecordBet(ctx context.Context, entry models.BetEntry) (models.Bet, error) {
	bet, err := valuation.NewBet(entry, s.now())
	if err != nil {
		return models.Bet{}, err
	}

	if err := s.ledger.Append(ctx, bet); err != nil {
		s.recordPersistenceError(err)
		return models.Bet{}, err
	}

	s.audit.LogBetRecorded(bet)
	metrics.RecordBetRecorded()
	return bet, nil
}

// SetResult records the outcome of the bet at position. A bet whose
// settlement is already recorded keeps its result.
func (s *Service) SetResult(ctx context.Context, position int, result models.BetResult) error {
	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		s.recordPersistenceError(err)
		return err
	}

	if position < 1 || position > snapshot.Len() {
		return fmt.Errorf("ledger row %d: %w", position, models.ErrNotFound)
	}
	row := snapshot.Rows[position-1]
	if row.SettlementRecorded && row.Bet.Result != result {
		return models.NewValidationError("result", result, "bet is already settled")
	}

	if err := s.ledger.WriteResult(ctx, position, result); err != nil {
		s.recordPersistenceError(err)
		return err
	}
	s.audit.LogResultRecorded(position, result)
	return nil
}

// Bets returns every decoded ledger row
func (s *Service) Bets(ctx context.Context) ([]models.LedgerRow, error) {
	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		s.recordPersistenceError(err)
		return nil, err
	}
	s.rememberSnapshot(snapshot)
	return snapshot.Rows, nil
}

// Ping checks the ledger store
func (s *Service) Ping(ctx context.Context) error {
	return s.ledger.Ping(ctx)
}

func (s *Service) rememberSnapshot(snapshot models.LedgerSnapshot) {
	s.lastGood.Set(lastGoodKey, snapshot, cache.DefaultExpiration)
}

func (s *Service) lastGoodSnapshot() (models.LedgerSnapshot, bool) {
	cached, found := s.lastGood.Get(lastGoodKey)
	if !found {
		return models.LedgerSnapshot{}, false
	}
	snapshot, ok := cached.(models.LedgerSnapshot)
	return snapshot, ok
}

func (s *Service) recordPersistenceError(err error) {
	var persistErr *models.PersistenceError
	if errors.As(err, &persistErr) {
		metrics.RecordPersistenceError(persistErr.Op)
	}
}

func newRunID() string {
	return uuid.New().String()
}
