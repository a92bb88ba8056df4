package prices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/models"
)

// SpotFetcher retrieves both current spot prices from an upstream API.
// Partial results are an error: either both metals come back or neither does.
type SpotFetcher interface {
	FetchSpot(ctx context.Context) (gold, silver float64, err error)
}

// SpotCache keeps a best-effort current spot price with a freshness window.
// It starts seeded with default values and a zero timestamp, so the first
// call always attempts a live fetch. On upstream failure the last known
// values are served, however stale.
type SpotCache struct {
	fetcher SpotFetcher
	ttl     time.Duration

	mu        sync.Mutex
	gold      float64
	silver    float64
	fetchedAt time.Time // zero until the first successful fetch
}

func NewSpotCache(fetcher SpotFetcher, ttl time.Duration, seedGold, seedSilver float64) *SpotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SpotCache{
		fetcher: fetcher,
		ttl:     ttl,
		gold:    seedGold,
		silver:  seedSilver,
	}
}

// Current returns the spot prices, refreshing from upstream when the cache
// has gone stale. A failed refresh falls back to the cached values with a
// note; the call itself never fails.
func (c *SpotCache) Current(ctx context.Context) models.SpotPrice {
	c.mu.Lock()
	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl {
		snap := models.SpotPrice{Gold: c.gold, Silver: c.silver, FetchedAt: c.fetchedAt, Cached: true}
		c.mu.Unlock()
		return snap
	}
	c.mu.Unlock()

	gold, silver, err := c.fetcher.FetchSpot(ctx)
	if err != nil {
		fmt.Printf("[SPOT] Live fetch failed: %v, serving cached values\n", err)
		c.mu.Lock()
		snap := models.SpotPrice{
			Gold:      c.gold,
			Silver:    c.silver,
			FetchedAt: c.fetchedAt,
			Cached:    true,
			Note:      "live price data unavailable, using cached values",
		}
		c.mu.Unlock()
		return snap
	}

	now := time.Now()
	c.mu.Lock()
	c.gold, c.silver, c.fetchedAt = gold, silver, now
	c.mu.Unlock()

	return models.SpotPrice{Gold: gold, Silver: silver, FetchedAt: now, Cached: false}
}

// Snapshot returns the cached values without attempting a refresh. Used by
// the resolver's fallback tier, which must stay pure.
func (c *SpotCache) Snapshot() models.SpotPrice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.SpotPrice{Gold: c.gold, Silver: c.silver, FetchedAt: c.fetchedAt, Cached: true}
}
