package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/prices"
	"github.com/kingleosgold/stack-tracker-pro/internal/scheduler"
)

type fakeHistoryFetcher struct {
	gold     map[string]float64
	ratios   map[string]float64
	goldErr  error
	ratioErr error
}

func (f *fakeHistoryFetcher) FetchGoldHistory(context.Context) (map[string]float64, error) {
	return f.gold, f.goldErr
}

func (f *fakeHistoryFetcher) FetchRatioHistory(context.Context) (map[string]float64, error) {
	return f.ratios, f.ratioErr
}

func TestRefreshNowLoadsStore(t *testing.T) {
	store := prices.NewHistoricalStore()
	fetcher := &fakeHistoryFetcher{
		gold:   map[string]float64{"2025-01-02": 2650.00, "2025-01-03": 2655.25},
		ratios: map[string]float64{"2025-01-02": 86.5},
	}

	cycled := false
	r := scheduler.NewRefresher(fetcher, store, scheduler.RefresherConfig{
		OnCycle: func(context.Context) { cycled = true },
	})

	if err := r.RefreshNow(context.Background()); err != nil {
		t.Fatalf("RefreshNow failed: %v", err)
	}

	goldCount, ratioCount := store.Counts()
	if goldCount != 2 || ratioCount != 1 {
		t.Errorf("Counts = (%d, %d), want (2, 1)", goldCount, ratioCount)
	}
	if !cycled {
		t.Error("OnCycle was not invoked after a successful refresh")
	}
}

func TestRefreshKeepsOldTablesOnFailure(t *testing.T) {
	store := prices.NewHistoricalStore()
	store.ReplaceGold(map[string]float64{"2025-01-02": 2650.00})
	store.ReplaceRatios(map[string]float64{"2025-01-02": 86.5})

	fetcher := &fakeHistoryFetcher{
		gold:     map[string]float64{"2025-01-03": 2700.00},
		ratioErr: errors.New("dataset unreachable"),
	}

	cycled := false
	r := scheduler.NewRefresher(fetcher, store, scheduler.RefresherConfig{
		OnCycle: func(context.Context) { cycled = true },
	})

	if err := r.RefreshNow(context.Background()); err == nil {
		t.Fatal("expected error when ratio fetch fails")
	}
	if cycled {
		t.Error("OnCycle should not run after a failed refresh")
	}

	// Previous tables survive a partial failure untouched.
	if v, ok := store.GoldOn("2025-01-02"); !ok || v != 2650.00 {
		t.Errorf("GoldOn(2025-01-02) = (%f, %v), want old value intact", v, ok)
	}
	if _, ok := store.GoldOn("2025-01-03"); ok {
		t.Error("partial fetch results should not have been applied")
	}
}

func TestStartStop(t *testing.T) {
	store := prices.NewHistoricalStore()
	fetcher := &fakeHistoryFetcher{gold: map[string]float64{}, ratios: map[string]float64{}}
	r := scheduler.NewRefresher(fetcher, store, scheduler.RefresherConfig{Interval: time.Hour})

	if r.Running() {
		t.Error("refresher should not be running before Start")
	}
	r.Start()
	if !r.Running() {
		t.Error("refresher should be running after Start")
	}
	r.Start() // idempotent
	r.Stop()
	if r.Running() {
		t.Error("refresher should not be running after Stop")
	}
	r.Stop() // idempotent
}
