package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-lab/internal/ledger"
	"github.com/yourusername/value-lab/internal/logger"
	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/oddsfeed"
	"github.com/yourusername/value-lab/internal/tracker"
)

type stubFeed struct {
	matchups []models.Matchup
	err      error
}

func (s *stubFeed) FetchMatchups(ctx context.Context) ([]models.Matchup, error) {
	return s.matchups, s.err
}

type unreadableStore struct {
	*ledger.MemoryStore
}

func (unreadableStore) ReadAll(ctx context.Context) ([][]string, error) {
	return nil, errors.New("ledger offline")
}

type capturePublisher struct {
	summaries []*tracker.Summary
}

func (c *capturePublisher) PublishSummary(summary *tracker.Summary) {
	c.summaries = append(c.summaries, summary)
}

func fightMatchup() models.Matchup {
	return models.Matchup{
		ID:       "m1",
		HomeSide: "Alex Pereira",
		AwaySide: "Jamahal Hill",
		Bookmakers: []models.Bookmaker{
			{Key: "pinnacle", Markets: []models.Market{{Key: "h2h", Outcomes: []models.Outcome{
				{Name: "Alex Pereira", Price: 1.45}, {Name: "Jamahal Hill", Price: 2.90},
			}}}},
		},
	}
}

type testServer struct {
	handler   http.Handler
	publisher *capturePublisher
}

func newTestServer(store ledger.Store, feed oddsfeed.Provider) *testServer {
	svc := tracker.NewService(ledger.New(store), feed, nil, tracker.Options{
		PreferredBookmakers: []string{"pinnacle"},
	}, logger.Discard())

	publisher := &capturePublisher{}
	return &testServer{
		handler: NewRouter(RouterConfig{
			Service:     svc,
			Publisher:   publisher,
			MetricsPath: "/metrics",
			Logger:      logger.Discard(),
		}),
		publisher: publisher,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
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

func TestBetLifecycle(t *testing.T) {
	srv := newTestServer(ledger.NewMemoryStore(), nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/bets", sampleEntry())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bet models.Bet
	decode(t, rec, &bet)
	assert.Equal(t, 50.0, bet.ImpliedProbability)
	assert.Equal(t, models.BetResultPending, bet.Result)

	rec = srv.do(t, http.MethodPost, "/api/v1/bets/1/result", ResultRequest{Result: "win"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/reconcile", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report tracker.ReconcileReport
	decode(t, rec, &report)
	require.Len(t, report.Applied, 1)
	assert.Equal(t, 10.0, report.Applied[0].ProfitLoss)
	require.Len(t, srv.publisher.summaries, 1)

	rec = srv.do(t, http.MethodGet, "/api/v1/portfolio", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary tracker.Summary
	decode(t, rec, &summary)
	assert.Equal(t, 1, summary.TotalBets)
	assert.Equal(t, 10.0, summary.TotalProfitLoss)
	assert.Equal(t, 100.0, summary.ROIPercent)
	assert.False(t, summary.Stale)

	rec = srv.do(t, http.MethodGet, "/api/v1/bets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestCreateBetValidation(t *testing.T) {
	srv := newTestServer(ledger.NewMemoryStore(), nil)

	entry := sampleEntry()
	entry.Odds = 1.0
	rec := srv.do(t, http.MethodPost, "/api/v1/bets", entry)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "odds", resp.Field)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bets", bytes.NewBufferString("{not json"))
	raw := httptest.NewRecorder()
	srv.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestSetResultErrors(t *testing.T) {
	srv := newTestServer(ledger.NewMemoryStore(), nil)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/bets", sampleEntry()).Code)

	tests := []struct {
		name   string
		path   string
		result string
		status int
	}{
		{"unknown position", "/api/v1/bets/9/result", "win", http.StatusNotFound},
		{"bad position", "/api/v1/bets/abc/result", "win", http.StatusBadRequest},
		{"zero position", "/api/v1/bets/0/result", "win", http.StatusBadRequest},
		{"bad result", "/api/v1/bets/1/result", "maybe", http.StatusBadRequest},
		{"void", "/api/v1/bets/1/result", "void", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, tt.path, ResultRequest{Result: tt.result})
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestUnreadableLedger(t *testing.T) {
	srv := newTestServer(unreadableStore{ledger.NewMemoryStore()}, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/bets", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/portfolio", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestQuotesAndPrefill(t *testing.T) {
	srv := newTestServer(ledger.NewMemoryStore(), &stubFeed{matchups: []models.Matchup{fightMatchup()}})

	rec := srv.do(t, http.MethodGet, "/api/v1/quotes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = srv.do(t, http.MethodGet, "/api/v1/quotes/prefill?matchup=Alex+Pereira+vs+Jamahal+Hill&selection=Jamahal+Hill", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var prefill PrefillResponse
	decode(t, rec, &prefill)
	assert.Equal(t, 2.90, prefill.Odds)
	assert.Equal(t, "pinnacle", prefill.Bookmaker)
	assert.Empty(t, prefill.Warning)

	rec = srv.do(t, http.MethodGet, "/api/v1/quotes/prefill?matchup=Nobody+vs+Somebody&selection=Nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/quotes/prefill", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedOutage(t *testing.T) {
	outage := fmt.Errorf("%w: status 503", models.ErrFeedUnavailable)
	srv := newTestServer(ledger.NewMemoryStore(), &stubFeed{err: outage})

	rec := srv.do(t, http.MethodGet, "/api/v1/quotes", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/quotes/prefill?matchup=Alex+Pereira+vs+Jamahal+Hill&selection=Alex+Pereira", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var prefill PrefillResponse
	decode(t, rec, &prefill)
	assert.Zero(t, prefill.Odds)
	assert.NotEmpty(t, prefill.Warning)
}

func TestAnalysisDisabled(t *testing.T) {
	srv := newTestServer(ledger.NewMemoryStore(), &stubFeed{matchups: []models.Matchup{fightMatchup()}})

	rec := srv.do(t, http.MethodPost, "/api/v1/analysis", AnalysisRequest{Matchup: "Alex Pereira vs Jamahal Hill"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/analysis", AnalysisRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(ledger.NewMemoryStore(), nil)

	rec := srv.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
