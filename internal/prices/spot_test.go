package prices_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/prices"
)

// fakeFetcher counts calls and can be switched into failure mode.
type fakeFetcher struct {
	calls atomic.Int32
	fail  atomic.Bool
	gold  float64
	slv   float64
}

func (f *fakeFetcher) FetchSpot(context.Context) (float64, float64, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return 0, 0, errors.New("upstream down")
	}
	return f.gold, f.slv, nil
}

func TestSpotCache_FirstCallAlwaysFetches(t *testing.T) {
	f := &fakeFetcher{gold: 2700.25, slv: 31.10}
	cache := prices.NewSpotCache(f, 5*time.Minute, 2650, 30.5)

	sp := cache.Current(context.Background())
	if sp.Cached {
		t.Fatal("first successful fetch should not be marked cached")
	}
	if sp.Gold != 2700.25 || sp.Silver != 31.10 {
		t.Fatalf("unexpected prices: %+v", sp)
	}
	if f.calls.Load() != 1 {
		t.Fatalf("expected 1 fetch, got %d", f.calls.Load())
	}
}

func TestSpotCache_ServesFreshWithoutRefetch(t *testing.T) {
	f := &fakeFetcher{gold: 2700, slv: 31}
	cache := prices.NewSpotCache(f, 5*time.Minute, 2650, 30.5)

	cache.Current(context.Background())
	sp := cache.Current(context.Background())
	if !sp.Cached {
		t.Fatal("second call within TTL should be cached")
	}
	if f.calls.Load() != 1 {
		t.Fatalf("expected 1 fetch total, got %d", f.calls.Load())
	}
}

func TestSpotCache_StaleFallbackOnFailure(t *testing.T) {
	f := &fakeFetcher{gold: 2700, slv: 31}
	cache := prices.NewSpotCache(f, 1*time.Millisecond, 2650, 30.5)

	first := cache.Current(context.Background())
	if first.Cached {
		t.Fatal("expected live fetch")
	}

	time.Sleep(5 * time.Millisecond) // let the cache go stale
	f.fail.Store(true)

	sp := cache.Current(context.Background())
	if !sp.Cached {
		t.Fatal("failed refresh must serve cached values")
	}
	if sp.Gold != 2700 || sp.Silver != 31 {
		t.Fatalf("expected last known values, got %+v", sp)
	}
	if sp.Note == "" {
		t.Fatal("expected a note about live data being unavailable")
	}
	if sp.FetchedAt != first.FetchedAt {
		t.Fatal("timestamp must reflect the last successful fetch")
	}
}

func TestSpotCache_SeedBeforeFirstFetch(t *testing.T) {
	f := &fakeFetcher{}
	f.fail.Store(true)
	cache := prices.NewSpotCache(f, 5*time.Minute, 2650, 30.5)

	sp := cache.Current(context.Background())
	if !sp.Cached {
		t.Fatal("failed first fetch should fall back to seed")
	}
	if sp.Gold != 2650 || sp.Silver != 30.5 {
		t.Fatalf("expected seed values, got %+v", sp)
	}
	if !sp.FetchedAt.IsZero() {
		t.Fatal("seed values carry a zero timestamp")
	}
}

func TestSpotCache_SnapshotNeverFetches(t *testing.T) {
	f := &fakeFetcher{gold: 2700, slv: 31}
	cache := prices.NewSpotCache(f, 5*time.Minute, 2650, 30.5)

	sp := cache.Snapshot()
	if f.calls.Load() != 0 {
		t.Fatalf("snapshot must not fetch, got %d calls", f.calls.Load())
	}
	if sp.Gold != 2650 || sp.Silver != 30.5 {
		t.Fatalf("expected seed snapshot, got %+v", sp)
	}
}
