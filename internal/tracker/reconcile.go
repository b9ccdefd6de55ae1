package tracker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/metrics"
	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/settlement"
)

// ApplyFailure is a settlement the ledger store rejected. The row stays
// unsettled and is picked up by the next run.
type ApplyFailure struct {
	Position int    `json:"position"`
	Error    string `json:"error"`
}

// ReconcileReport describes one reconciliation run
type ReconcileReport struct {
	RunID       string                           `json:"run_id"`
	Applied     []models.SettlementUpdate        `json:"applied"`
	Conflicts   []*models.ReconciliationConflict `json:"conflicts"`
	Failures    []ApplyFailure                   `json:"failures"`
	Skipped     int                              `json:"skipped"`
	Duration    time.Duration                    `json:"duration"`
	CompletedAt time.Time                        `json:"completed_at"`
}

// Reconcile settles every bet whose result is known and whose settlement
// values are missing. Each update is written once; a failed write is
// reported and left for the next run.
func (s *Service) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	start := s.now()
	report := &ReconcileReport{
		RunID:     newRunID(),
		Applied:   make([]models.SettlementUpdate, 0),
		Conflicts: make([]*models.ReconciliationConflict, 0),
		Failures:  make([]ApplyFailure, 0),
	}
	log := s.logger.WithField("run_id", report.RunID)

	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		s.recordPersistenceError(err)
		log.WithError(err).Error("Failed to read ledger for reconciliation")
		return nil, err
	}

	result := settlement.Reconcile(snapshot)
	report.Skipped = result.Skipped

	for _, conflict := range result.Conflicts {
		report.Conflicts = append(report.Conflicts, conflict)
		metrics.RecordReconciliationConflict()
		s.audit.LogReconciliationConflict(report.RunID, conflict)
	}

	for _, update := range result.Updates {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, ApplyFailure{Position: update.Position, Error: err.Error()})
			continue
		}
		if err := s.ledger.Apply(ctx, update); err != nil {
			s.recordPersistenceError(err)
			s.audit.LogApplyFailure(report.RunID, update.Position, err)
			report.Failures = append(report.Failures, ApplyFailure{Position: update.Position, Error: err.Error()})
			continue
		}
		report.Applied = append(report.Applied, update)
		metrics.RecordSettlementApplied(string(update.Result))
		s.audit.LogSettlementApplied(report.RunID, update)
	}

	s.rememberSnapshot(settlement.Apply(snapshot, report.Applied))

	report.CompletedAt = s.now()
	report.Duration = report.CompletedAt.Sub(start)
	metrics.RecordReconciliationDuration(report.Duration.Seconds())

	log.WithFields(logrus.Fields{
		"applied":   len(report.Applied),
		"conflicts": len(report.Conflicts),
		"failures":  len(report.Failures),
		"skipped":   report.Skipped,
	}).Info("Reconciliation complete")

	return report, nil
}
