package prices_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kingleosgold/stack-tracker-pro/internal/models"
	"github.com/kingleosgold/stack-tracker-pro/internal/prices"
)

// failingFetcher always errors, so the spot cache keeps serving its seed.
type failingFetcher struct{}

func (failingFetcher) FetchSpot(context.Context) (float64, float64, error) {
	return 0, 0, errors.New("unreachable")
}

func newFixtureResolver() *prices.Resolver {
	store := prices.NewHistoricalStore()
	store.ReplaceGold(map[string]float64{
		"2024-04-19": 2391.50,
		"2024-03-01": 2083.00,
	})
	store.ReplaceRatios(map[string]float64{
		"2024-04-19": 84.5,
	})
	spot := prices.NewSpotCache(failingFetcher{}, 0, 2650, 30.5)
	return prices.NewResolver(store, spot, 30, 80)
}

func TestResolveGold_Exact(t *testing.T) {
	r := newFixtureResolver()
	got := r.Resolve("2024-04-19", prices.MetalGold)
	if got.Source != models.SourceExact {
		t.Fatalf("expected exact, got %s", got.Source)
	}
	if got.Price != 2391.50 {
		t.Fatalf("expected table value exactly, got %.4f", got.Price)
	}
}

func TestResolveGold_Nearest(t *testing.T) {
	r := newFixtureResolver()
	got := r.Resolve("2024-04-20", prices.MetalGold)
	if got.Source != models.SourceNearest {
		t.Fatalf("expected nearest, got %s", got.Source)
	}
	if got.Price != 2391.50 {
		t.Fatalf("expected 2391.50, got %.2f", got.Price)
	}
	if got.Note == "" {
		t.Fatal("nearest result should note the matched date")
	}
	t.Logf("Note: %s", got.Note)
}

func TestResolveGold_FallbackBeyondWindow(t *testing.T) {
	r := newFixtureResolver()
	got := r.Resolve("2020-01-01", prices.MetalGold)
	if got.Source != models.SourceFallback {
		t.Fatalf("expected fallback, got %s", got.Source)
	}
	if got.Price != 2650 {
		t.Fatalf("expected seed spot 2650, got %.2f", got.Price)
	}
}

func TestResolveSilver_ExactGoldAndRatio(t *testing.T) {
	r := newFixtureResolver()
	got := r.Resolve("2024-04-19", prices.MetalSilver)
	if got.Source != models.SourceExact {
		t.Fatalf("expected exact, got %s", got.Source)
	}
	// 2391.50 / 84.5 rounded to 2 decimals
	if got.Price != 28.30 {
		t.Fatalf("expected 28.30, got %.4f", got.Price)
	}
}

func TestResolveSilver_InterpolatedFromNearbyRatio(t *testing.T) {
	// Exact gold for the query date, ratio only recorded 9 days later.
	store := prices.NewHistoricalStore()
	store.ReplaceGold(map[string]float64{"2024-03-01": 2083.00})
	store.ReplaceRatios(map[string]float64{"2024-03-10": 88.0})
	spot := prices.NewSpotCache(failingFetcher{}, 0, 2650, 30.5)
	r := prices.NewResolver(store, spot, 30, 80)

	got := r.Resolve("2024-03-01", prices.MetalSilver)
	if got.Source != models.SourceInterpolated {
		t.Fatalf("expected interpolated, got %s", got.Source)
	}
	// 2083.00 / 88.0 = 23.670... → 23.67
	if got.Price != 23.67 {
		t.Fatalf("expected 23.67, got %.4f", got.Price)
	}
}

func TestResolveSilver_EstimatedWithDefaultRatio(t *testing.T) {
	store := prices.NewHistoricalStore()
	store.ReplaceGold(map[string]float64{"2024-03-01": 2083.00})
	store.ReplaceRatios(map[string]float64{}) // no ratios at all
	spot := prices.NewSpotCache(failingFetcher{}, 0, 2650, 30.5)
	r := prices.NewResolver(store, spot, 30, 80)

	got := r.Resolve("2024-03-01", prices.MetalSilver)
	if got.Source != models.SourceEstimated {
		t.Fatalf("expected estimated, got %s", got.Source)
	}
	// 2083.00 / 80 = 26.0375 → 26.04
	if got.Price != 26.04 {
		t.Fatalf("expected 26.04, got %.4f", got.Price)
	}
}

func TestResolveSilver_InterpolatedFromNearestGold(t *testing.T) {
	r := newFixtureResolver()
	// No exact gold for 2024-04-25; nearest gold 2024-04-19, nearest ratio 84.5.
	got := r.Resolve("2024-04-25", prices.MetalSilver)
	if got.Source != models.SourceInterpolated {
		t.Fatalf("expected interpolated, got %s", got.Source)
	}
	if got.Price != 28.30 {
		t.Fatalf("expected 28.30, got %.4f", got.Price)
	}
}

func TestResolveSilver_NearestGoldDefaultRatio(t *testing.T) {
	store := prices.NewHistoricalStore()
	store.ReplaceGold(map[string]float64{"2024-03-01": 2083.00})
	store.ReplaceRatios(map[string]float64{})
	spot := prices.NewSpotCache(failingFetcher{}, 0, 2650, 30.5)
	r := prices.NewResolver(store, spot, 30, 80)

	got := r.Resolve("2024-03-05", prices.MetalSilver)
	if got.Source != models.SourceInterpolated {
		t.Fatalf("expected interpolated, got %s", got.Source)
	}
	// nearest gold 2083.00 / default ratio 80 → 26.04
	if got.Price != 26.04 {
		t.Fatalf("expected 26.04, got %.4f", got.Price)
	}
}

func TestResolveSilver_Fallback(t *testing.T) {
	r := newFixtureResolver()
	got := r.Resolve("2020-01-01", prices.MetalSilver)
	if got.Source != models.SourceFallback {
		t.Fatalf("expected fallback, got %s", got.Source)
	}
	if got.Price != 30.5 {
		t.Fatalf("expected seed spot 30.5, got %.2f", got.Price)
	}
}

func TestValidMetal(t *testing.T) {
	if !prices.ValidMetal("gold") || !prices.ValidMetal("silver") {
		t.Fatal("gold and silver must be valid")
	}
	for _, m := range []string{"", "platinum", "Gold", "SILVER"} {
		if prices.ValidMetal(m) {
			t.Fatalf("%q should be invalid", m)
		}
	}
}
