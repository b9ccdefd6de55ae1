package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-lab/internal/analysis"
	"github.com/yourusername/value-lab/internal/ledger"
	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/oddsfeed"
	"github.com/yourusername/value-lab/internal/quotes"
)

// flakyStore fails reads or writes on demand
type flakyStore struct {
	*ledger.MemoryStore
	mu         sync.Mutex
	failReads  bool
	failWrites bool
	failCol    int
}

func (f *flakyStore) setFailures(reads, writes bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = reads
	f.failWrites = writes
}

func (f *flakyStore) ReadAll(ctx context.Context) ([][]string, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return nil, errors.New("ledger offline")
	}
	return f.MemoryStore.ReadAll(ctx)
}

func (f *flakyStore) UpdateCell(ctx context.Context, row, col int, value string) error {
	f.mu.Lock()
	fail := f.failWrites || (f.failCol != 0 && f.failCol == col)
	f.mu.Unlock()
	if fail {
		return errors.New("write quota exceeded")
	}
	return f.MemoryStore.UpdateCell(ctx, row, col, value)
}

type stubFeed struct {
	matchups []models.Matchup
	err      error
}

func (s *stubFeed) FetchMatchups(ctx context.Context) ([]models.Matchup, error) {
	return s.matchups, s.err
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newTestService(store ledger.Store, feed *stubFeed, analyzer *mockAnalyzer, opts Options) *Service {
	var provider oddsfeed.Provider
	if feed != nil {
		provider = feed
	}
	var a analysis.Analyzer
	if analyzer != nil {
		a = analyzer
	}
	svc := NewService(ledger.New(store), provider, a, opts, nil)
	svc.now = func() time.Time { return time.Date(2025, 4, 13, 18, 30, 0, 0, time.UTC) }
	return svc
}

func fightMatchup() models.Matchup {
	return models.Matchup{
		ID:       "m1",
		HomeSide: "Alex Pereira",
		AwaySide: "Jamahal Hill",
		Bookmakers: []models.Bookmaker{
			{Key: "bet365", Markets: []models.Market{{Key: "h2h", Outcomes: []models.Outcome{
				{Name: "Alex Pereira", Price: 1.40}, {Name: "Jamahal Hill", Price: 3.00},
			}}}},
			{Key: "pinnacle", Markets: []models.Market{{Key: "h2h", Outcomes: []models.Outcome{
				{Name: "Alex Pereira", Price: 1.45}, {Name: "Jamahal Hill", Price: 2.90},
			}}}},
		},
	}
}

func sampleEntry() models.BetEntry {
	return models.BetEntry{
		Event:             "UFC 300",
		Matchup:           "Alex Pereira vs Jamahal Hill",
		Selection:         "Alex Pereira",
		Bookmaker:         "pinnacle",
		Odds:              2.00,
		StatedProbability: 60,
		Stake:             10,
	}
}

func TestRecordReconcileSummarise(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	svc := newTestService(store, nil, nil, Options{})

	bet, err := svc.RecordBet(ctx, sampleEntry())
	require.NoError(t, err)
	assert.Equal(t, 50.0, bet.ImpliedProbability)
	assert.Equal(t, 20.0, bet.ExpectedValue)
	assert.Equal(t, models.BetResultPending, bet.Result)

	require.NoError(t, svc.SetResult(ctx, 1, models.BetResultWin))

	report, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, report.Applied, 1)
	assert.Equal(t, 10.0, report.Applied[0].ProfitLoss)
	assert.Equal(t, 0.16, report.Applied[0].ForecastScore)
	assert.NotEmpty(t, report.RunID)

	again, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Applied)
	assert.Equal(t, 1, again.Skipped)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, summary.Stale)
	assert.Equal(t, 1, summary.TotalBets)
	assert.Equal(t, 10.0, summary.TotalProfitLoss)
	assert.Equal(t, 100.0, summary.ROIPercent)
	assert.Equal(t, 100.0, summary.WinRate)
	require.NotNil(t, summary.AverageForecastScore)
	assert.Equal(t, 0.16, *summary.AverageForecastScore)
}

func TestRecordBetRejectsInvalidEntry(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := newTestService(store, nil, nil, Options{})

	entry := sampleEntry()
	entry.Odds = 1.0
	_, err := svc.RecordBet(context.Background(), entry)

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "odds", validationErr.Field)

	rows, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSetResultGuards(t *testing.T) {
	ctx := context.Background()
	pl, score := 10.0, 0.16
	settled := models.Bet{Odds: 2, StatedProbability: 60, Stake: 10, Result: models.BetResultWin, ProfitLoss: &pl, ForecastScore: &score}
	svc := newTestService(ledger.NewMemoryStore(ledger.EncodeRow(settled)), nil, nil, Options{})

	err := svc.SetResult(ctx, 2, models.BetResultWin)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = svc.SetResult(ctx, 1, models.BetResultLoss)
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "result", validationErr.Field)
}

func TestReconcileReportsConflicts(t *testing.T) {
	ctx := context.Background()
	row := ledger.EncodeRow(models.Bet{Event: "UFC 300", Odds: 2, StatedProbability: 60, Stake: 10, Result: models.BetResultWin})
	row[ledger.ColOdds-1] = "two"
	svc := newTestService(ledger.NewMemoryStore(row), nil, nil, Options{})

	report, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Applied)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, 1, report.Conflicts[0].Position)
	assert.Equal(t, []string{"odds"}, report.Conflicts[0].Fields)
}

func TestReconcileRetriesFailedWrites(t *testing.T) {
	ctx := context.Background()
	bet := models.Bet{Odds: 2, StatedProbability: 40, Stake: 10, Result: models.BetResultLoss}
	store := &flakyStore{MemoryStore: ledger.NewMemoryStore(ledger.EncodeRow(bet))}
	svc := newTestService(store, nil, nil, Options{})

	store.setFailures(false, true)
	report, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Applied)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Failures[0].Position)

	store.setFailures(false, false)
	report, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, report.Applied, 1)
	assert.Equal(t, -10.0, report.Applied[0].ProfitLoss)
	assert.Equal(t, 0.16, report.Applied[0].ForecastScore)
}

func TestReconcileRetriesRowAfterFailedScoreWrite(t *testing.T) {
	ctx := context.Background()
	bet := models.Bet{Odds: 2, StatedProbability: 60, Stake: 10, Result: models.BetResultWin}
	store := &flakyStore{MemoryStore: ledger.NewMemoryStore(ledger.EncodeRow(bet))}
	svc := newTestService(store, nil, nil, Options{})

	store.mu.Lock()
	store.failCol = ledger.ColForecastScore
	store.mu.Unlock()

	report, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Applied)
	require.Len(t, report.Failures, 1)

	raw, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, raw[0][ledger.ColProfitLoss-1])

	store.mu.Lock()
	store.failCol = 0
	store.mu.Unlock()

	report, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, report.Applied, 1)
	assert.Equal(t, 10.0, report.Applied[0].ProfitLoss)
	assert.Equal(t, 0.16, report.Applied[0].ForecastScore)

	raw, err = store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", raw[0][ledger.ColProfitLoss-1])
	assert.Equal(t, "0.16", raw[0][ledger.ColForecastScore-1])
}

func TestReconcileFailsWhenLedgerUnreadable(t *testing.T) {
	store := &flakyStore{MemoryStore: ledger.NewMemoryStore()}
	store.setFailures(true, false)
	svc := newTestService(store, nil, nil, Options{})

	_, err := svc.Reconcile(context.Background())
	var persistErr *models.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "read_all", persistErr.Op)
}

func TestSummaryFallsBackToLastGoodSnapshot(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: ledger.NewMemoryStore()}
	svc := newTestService(store, nil, nil, Options{})

	store.setFailures(true, false)
	_, err := svc.Summary(ctx)
	var persistErr *models.PersistenceError
	require.ErrorAs(t, err, &persistErr)

	store.setFailures(false, false)
	_, err = svc.RecordBet(ctx, sampleEntry())
	require.NoError(t, err)
	fresh, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, fresh.Stale)

	store.setFailures(true, false)
	stale, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, stale.Stale)
	assert.Equal(t, 1, stale.TotalBets)
	assert.Equal(t, 10.0, stale.TotalStaked)
}

func TestPrefillEntry(t *testing.T) {
	ctx := context.Background()
	feed := &stubFeed{matchups: []models.Matchup{fightMatchup()}}
	svc := newTestService(ledger.NewMemoryStore(), feed, nil, Options{PreferredBookmakers: []string{"pinnacle"}})

	prefill, err := svc.PrefillEntry(ctx, "Alex Pereira vs Jamahal Hill", "Jamahal Hill")
	require.NoError(t, err)
	assert.Equal(t, "pinnacle", prefill.Bookmaker)
	assert.Equal(t, 2.90, prefill.Odds)

	prefill, err = svc.PrefillEntry(ctx, "Alex Pereira vs Jamahal Hill", "Over 2.5 rounds")
	require.NoError(t, err)
	assert.Equal(t, quotes.Unavailable, prefill.Odds)
}

func TestPrefillEntryNormalizesNames(t *testing.T) {
	feed := &stubFeed{matchups: []models.Matchup{fightMatchup()}}
	svc := newTestService(ledger.NewMemoryStore(), feed, nil, Options{NormalizeNames: true})

	prefill, err := svc.PrefillEntry(context.Background(), "alex pereira vs jamahal hill", "ALEX PEREIRA")
	require.NoError(t, err)
	assert.Equal(t, "bet365", prefill.Bookmaker)
	assert.Equal(t, 1.40, prefill.Odds)
	assert.Equal(t, "Alex Pereira vs Jamahal Hill", prefill.Matchup)
}

func TestPrefillEntryFeedOutage(t *testing.T) {
	feed := &stubFeed{err: models.ErrFeedUnavailable}
	svc := newTestService(ledger.NewMemoryStore(), feed, nil, Options{})

	prefill, err := svc.PrefillEntry(context.Background(), "Alex Pereira vs Jamahal Hill", "Alex Pereira")
	assert.ErrorIs(t, err, models.ErrFeedUnavailable)
	assert.Equal(t, quotes.Unavailable, prefill.Odds)
}

func TestReferenceQuotes(t *testing.T) {
	feed := &stubFeed{matchups: []models.Matchup{fightMatchup(), {HomeSide: "C", AwaySide: "D"}}}
	svc := newTestService(ledger.NewMemoryStore(), feed, nil, Options{})

	result, err := svc.ReferenceQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "bet365", result[0].Quote.Bookmaker)
	assert.True(t, result[0].Quote.Complete())
	assert.False(t, result[1].Quote.Complete())
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	feed := &stubFeed{matchups: []models.Matchup{fightMatchup()}}
	analyzer := &mockAnalyzer{}
	analyzer.On("Analyze", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Matchup: Alex Pereira vs Jamahal Hill")
	})).Return("Pereira is overpriced.", nil)

	svc := newTestService(ledger.NewMemoryStore(), feed, analyzer, Options{})

	text, err := svc.Analyze(ctx, "Alex Pereira vs Jamahal Hill")
	require.NoError(t, err)
	assert.Equal(t, "Pereira is overpriced.", text)
	analyzer.AssertExpectations(t)

	_, err = svc.Analyze(ctx, "Nobody vs Someone")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAnalyzeDisabled(t *testing.T) {
	svc := newTestService(ledger.NewMemoryStore(), &stubFeed{}, nil, Options{})

	_, err := svc.Analyze(context.Background(), "A vs B")
	assert.ErrorIs(t, err, models.ErrAnalysisUnavailable)
}
