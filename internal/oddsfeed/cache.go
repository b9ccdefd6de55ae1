package oddsfeed

import (
	"context"
	"errors"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/value-lab/internal/metrics"
	"github.com/yourusername/value-lab/internal/models"
)

// CachedProvider keeps the last good feed snapshot so quote pre-fill does not
// hit the provider on every request
type CachedProvider struct {
	provider  Provider
	key       string
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCachedProvider wraps a provider with a snapshot cache
func NewCachedProvider(provider Provider, key string, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		key:      key,
		cache:    cache.New(ttl, ttl*2),
		ttl:      ttl,
	}
}

// FetchMatchups serves the cached snapshot while fresh, otherwise asks the provider
func (cp *CachedProvider) FetchMatchups(ctx context.Context) ([]models.Matchup, error) {
	if cached, found := cp.cache.Get(cp.key); found {
		cp.record(true)
		if matchups, ok := cached.([]models.Matchup); ok {
			return matchups, nil
		}
	}

	cp.record(false)
	return cp.Refresh(ctx)
}

// Refresh fetches a new snapshot and replaces the cached one on success.
// A failed refresh leaves the previous snapshot in place.
func (cp *CachedProvider) Refresh(ctx context.Context) ([]models.Matchup, error) {
	matchups, err := cp.provider.FetchMatchups(ctx)
	if err != nil {
		return nil, err
	}
	if len(matchups) == 0 {
		return nil, errors.Join(models.ErrFeedUnavailable, errors.New("empty feed snapshot"))
	}
	cp.cache.Set(cp.key, matchups, cp.ttl)
	return matchups, nil
}

// Clear drops the cached snapshot and resets statistics
func (cp *CachedProvider) Clear() {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	cp.cache.Flush()
	cp.hitCount = 0
	cp.missCount = 0
}

// Stats returns cache statistics
func (cp *CachedProvider) Stats() (hits, misses uint64, ratio float64) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	hits = cp.hitCount
	misses = cp.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (cp *CachedProvider) record(hit bool) {
	cp.mu.Lock()
	if hit {
		cp.hitCount++
	} else {
		cp.missCount++
	}
	total := cp.hitCount + cp.missCount
	ratio := float64(cp.hitCount) / float64(total)
	cp.mu.Unlock()

	metrics.UpdateFeedCacheHitRatio(ratio)
}
