package oddsfeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-lab/internal/models"
)

type stubProvider struct {
	calls    int
	matchups []models.Matchup
	err      error
}

func (s *stubProvider) FetchMatchups(ctx context.Context) ([]models.Matchup, error) {
	s.calls++
	return s.matchups, s.err
}

func TestCachedProviderServesFreshSnapshot(t *testing.T) {
	stub := &stubProvider{matchups: []models.Matchup{{HomeSide: "A", AwaySide: "B"}}}
	cp := NewCachedProvider(stub, "mma", time.Hour)
	defer cp.Clear()

	ctx := context.Background()
	first, err := cp.FetchMatchups(ctx)
	require.NoError(t, err)
	second, err := cp.FetchMatchups(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)

	hits, misses, ratio := cp.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}

func TestCachedProviderExpiry(t *testing.T) {
	stub := &stubProvider{matchups: []models.Matchup{{HomeSide: "A", AwaySide: "B"}}}
	cp := NewCachedProvider(stub, "mma", 50*time.Millisecond)

	ctx := context.Background()
	_, err := cp.FetchMatchups(ctx)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = cp.FetchMatchups(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestCachedProviderRefreshFailureKeepsSnapshot(t *testing.T) {
	stub := &stubProvider{matchups: []models.Matchup{{HomeSide: "A", AwaySide: "B"}}}
	cp := NewCachedProvider(stub, "mma", time.Hour)

	ctx := context.Background()
	_, err := cp.FetchMatchups(ctx)
	require.NoError(t, err)

	stub.err = models.ErrFeedUnavailable
	_, err = cp.Refresh(ctx)
	assert.True(t, errors.Is(err, models.ErrFeedUnavailable))

	matchups, err := cp.FetchMatchups(ctx)
	require.NoError(t, err)
	assert.Len(t, matchups, 1)
}

func TestCachedProviderPropagatesOutage(t *testing.T) {
	cp := NewCachedProvider(&stubProvider{err: models.ErrFeedUnavailable}, "mma", time.Hour)

	_, err := cp.FetchMatchups(context.Background())
	assert.ErrorIs(t, err, models.ErrFeedUnavailable)
}
