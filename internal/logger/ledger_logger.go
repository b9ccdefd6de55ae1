package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-lab/internal/models"
)

// LedgerLogger records the audit trail of ledger writes.
type LedgerLogger struct {
	*logrus.Entry
}

// NewLedgerLogger creates a new ledger audit logger.
func NewLedgerLogger(baseLogger *logrus.Logger) *LedgerLogger {
	return &LedgerLogger{
		Entry: baseLogger.WithField("component", "ledger_audit"),
	}
}

// LogBetRecorded logs a bet appended to the ledger.
func (l *LedgerLogger) LogBetRecorded(bet models.Bet) {
	l.WithFields(logrus.Fields{
		"event":               bet.Event,
		"matchup":             bet.Matchup,
		"selection":           bet.Selection,
		"bookmaker":           bet.Bookmaker,
		"odds":                bet.Odds,
		"stake":               bet.Stake,
		"implied_probability": bet.ImpliedProbability,
		"stated_probability":  bet.StatedProbability,
		"expected_value":      bet.ExpectedValue,
	}).Info("Bet recorded")
}

// LogResultRecorded logs an outcome written to a ledger row.
func (l *LedgerLogger) LogResultRecorded(position int, result models.BetResult) {
	l.WithFields(logrus.Fields{
		"position": position,
		"result":   result,
	}).Info("Result recorded")
}

// LogSettlementApplied logs settlement values written to a ledger row.
func (l *LedgerLogger) LogSettlementApplied(runID string, update models.SettlementUpdate) {
	l.WithFields(logrus.Fields{
		"run_id":         runID,
		"position":       update.Position,
		"result":         update.Result,
		"profit_loss":    update.ProfitLoss,
		"forecast_score": update.ForecastScore,
	}).Info("Settlement applied")
}

// LogReconciliationConflict logs a settled row that could not be reconciled.
func (l *LedgerLogger) LogReconciliationConflict(runID string, conflict *models.ReconciliationConflict) {
	l.WithFields(logrus.Fields{
		"run_id":   runID,
		"position": conflict.Position,
		"result":   conflict.Result,
		"fields":   conflict.Fields,
	}).Warn("Reconciliation conflict")
}

// LogApplyFailure logs a settlement that the store rejected.
func (l *LedgerLogger) LogApplyFailure(runID string, position int, err error) {
	l.WithFields(logrus.Fields{
		"run_id":   runID,
		"position": position,
	}).WithError(err).Error("Settlement write failed")
}

// LogStaleSnapshot logs a summary served from the last good snapshot.
func (l *LedgerLogger) LogStaleSnapshot(err error) {
	l.WithError(err).Warn("Ledger unreadable, serving last good snapshot")
}
