// Package scheduler runs the periodic settlement and feed refresh jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/tracker"
)

// Reconciler settles the ledger and reports the portfolio afterwards
type Reconciler interface {
	Reconcile(ctx context.Context) (*tracker.ReconcileReport, error)
	Summary(ctx context.Context) (*tracker.Summary, error)
}

// FeedRefresher re-fetches the odds feed, bypassing any cache
type FeedRefresher interface {
	Refresh(ctx context.Context) ([]models.Matchup, error)
}

// SummaryPublisher receives the portfolio summary after every reconcile run
type SummaryPublisher interface {
	PublishSummary(summary *tracker.Summary)
}

// Scheduler manages the cron jobs
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	publisher  SummaryPublisher
	logger     *logrus.Entry

	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	jobTimeout time.Duration
}

// NewScheduler creates a scheduler. publisher may be nil.
func NewScheduler(reconciler Reconciler, publisher SummaryPublisher, logger *logrus.Logger) *Scheduler {
	entry := logger.WithField("component", "scheduler")
	cronLog := cronLogger{entry: entry}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog)),
		),
		reconciler: reconciler,
		publisher:  publisher,
		logger:     entry,
		jobTimeout: 2 * time.Minute,
	}
}

// cronLogger routes cron's own messages, including recovered job panics,
// through logrus
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(kvFields(keysAndValues)).Error(msg)
}

func kvFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// ScheduleReconcile runs a settlement pass on the given cron expression
func (s *Scheduler) ScheduleReconcile(cronExpression string) error {
	return s.addJob("reconcile", cronExpression, s.runReconcile)
}

// ScheduleFeedRefresh keeps the cached feed warm on the given cron expression
func (s *Scheduler) ScheduleFeedRefresh(cronExpression string, feed FeedRefresher) error {
	return s.addJob("feed_refresh", cronExpression, func(ctx context.Context) {
		s.runFeedRefresh(ctx, feed)
	})
}

func (s *Scheduler) addJob(name, cronExpression string, job func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":  name,
		"cron": cronExpression,
	}).Info("Scheduled job")

	return nil
}

func (s *Scheduler) runReconcile(ctx context.Context) {
	report, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled reconcile failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"applied":   len(report.Applied),
		"conflicts": len(report.Conflicts),
		"failures":  len(report.Failures),
	}).Info("Scheduled reconcile completed")

	if s.publisher == nil {
		return
	}

	summary, err := s.reconciler.Summary(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Could not build summary after reconcile")
		return
	}
	s.publisher.PublishSummary(summary)
}

func (s *Scheduler) runFeedRefresh(ctx context.Context, feed FeedRefresher) {
	matchups, err := feed.Refresh(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Scheduled feed refresh failed")
		return
	}
	s.logger.WithField("matchups", len(matchups)).Debug("Feed refreshed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the earliest next run across all jobs
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	var next time.Time
	for _, id := range s.jobIDs {
		entry := s.cron.Entry(id)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}

// Entries returns the scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, id := range s.jobIDs {
		if entry := s.cron.Entry(id); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
