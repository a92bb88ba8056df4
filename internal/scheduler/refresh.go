package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/prices"
	"golang.org/x/sync/errgroup"
)

// HistoryFetcher loads the historical gold price and gold/silver ratio
// datasets from their upstream sources.
type HistoryFetcher interface {
	FetchGoldHistory(ctx context.Context) (map[string]float64, error)
	FetchRatioHistory(ctx context.Context) (map[string]float64, error)
}

type RefresherConfig struct {
	Interval time.Duration // e.g. 24*time.Hour
	// OnCycle runs after every successful refresh, e.g. to trigger the
	// daily ETF ratio calibration.
	OnCycle func(ctx context.Context)
}

// Refresher keeps the in-memory historical price tables current, fetching
// both datasets on startup and then on a fixed interval. A failed fetch
// leaves the previous tables in place.
type Refresher struct {
	fetcher HistoryFetcher
	store   *prices.HistoricalStore
	cfg     RefresherConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewRefresher(fetcher HistoryFetcher, store *prices.HistoricalStore, cfg RefresherConfig) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &Refresher{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
	}
}

func (r *Refresher) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		fmt.Println("[HISTORY] Refresher already running")
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.mu.Unlock()

	// Initial fetch on startup (fire-and-forget)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		if err := r.refresh(ctx); err != nil {
			fmt.Printf("[HISTORY] Initial refresh failed: %v\n", err)
		}
	}()

	// Recurring ticker
	go func() {
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
				if err := r.refresh(ctx); err != nil {
					fmt.Printf("[HISTORY] Refresh failed: %v\n", err)
				}
				cancel()
			}
		}
	}()

	fmt.Printf("[HISTORY] Refresher started (every %s)\n", r.cfg.Interval)
}

func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	close(r.stopCh)
	r.running = false
	fmt.Println("[HISTORY] Refresher stopped")
}

func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// RefreshNow manually triggers a refresh outside the normal schedule.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	fmt.Println("[HISTORY] Manual refresh triggered")
	return r.refresh(ctx)
}

func (r *Refresher) refresh(ctx context.Context) error {
	fmt.Println("[HISTORY] Fetching historical datasets...")

	var gold, ratios map[string]float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		gold, err = r.fetcher.FetchGoldHistory(gctx)
		if err != nil {
			return fmt.Errorf("gold history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ratios, err = r.fetcher.FetchRatioHistory(gctx)
		if err != nil {
			return fmt.Errorf("ratio history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		// Keep serving the previous tables.
		return err
	}

	r.store.ReplaceGold(gold)
	r.store.ReplaceRatios(ratios)

	goldCount, ratioCount := r.store.Counts()
	fmt.Printf("[HISTORY] Loaded %d gold records, %d ratio records\n", goldCount, ratioCount)

	if r.cfg.OnCycle != nil {
		r.cfg.OnCycle(ctx)
	}
	return nil
}
