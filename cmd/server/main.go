package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/api"
	"github.com/kingleosgold/stack-tracker-pro/internal/calibration"
	"github.com/kingleosgold/stack-tracker-pro/internal/config"
	"github.com/kingleosgold/stack-tracker-pro/internal/db"
	"github.com/kingleosgold/stack-tracker-pro/internal/external"
	"github.com/kingleosgold/stack-tracker-pro/internal/prices"
	"github.com/kingleosgold/stack-tracker-pro/internal/repository"
	"github.com/kingleosgold/stack-tracker-pro/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║     Stack Tracker Pro Backend        ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database is optional: without it calibration history lives in memory
	// and resets on restart.
	var calStore repository.CalibrationStore = repository.NewMemoryCalibrationStore()
	dbConnected := false
	if cfg.DatabaseConfigured() {
		fmt.Println("\n[DB] Connecting...")
		pool, err := db.Connect(cfg.DSN())
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Connection failed, using in-memory calibration store: %v\n", err)
		} else if err := db.TestConnection(pool); err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Test query failed, using in-memory calibration store: %v\n", err)
			pool.Close()
		} else if err := db.Migrate(context.Background(), pool); err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Migration failed, using in-memory calibration store: %v\n", err)
			pool.Close()
		} else {
			defer func() {
				pool.Close()
				fmt.Println("[DB] Connection pool closed")
			}()
			calStore = repository.NewCalibrationRepo(pool)
			dbConnected = true
		}
	} else {
		fmt.Println("\n[DB] Not configured - calibration history kept in memory")
	}

	// Price resolution stack
	store := prices.NewHistoricalStore()
	spotClient := external.NewSpotClient(cfg.SpotAPIBaseURL, cfg.SpotTimeout)
	spot := prices.NewSpotCache(spotClient, cfg.SpotCacheTTL, cfg.SeedGoldSpot, cfg.SeedSilverSpot)
	resolver := prices.NewResolver(store, spot, cfg.NearestWindowDays, cfg.DefaultGoldSilverRatio)

	// ETF ratio calibrator
	etf := external.NewETFClient("")
	calibrator := calibration.NewCalibrator(etf, calStore)

	// Vision OCR (optional)
	var vision api.ReceiptAnalyzer
	if cfg.GeminiAPIKey != "" {
		vc, err := external.NewVisionClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[VISION] Client init failed, receipt analysis disabled: %v\n", err)
		} else {
			vision = vc
		}
	} else {
		fmt.Println("[VISION] No GEMINI_API_KEY - receipt analysis disabled")
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Historical dataset refresher, with daily calibration piggybacked
	// on each successful cycle.
	refresher := scheduler.NewRefresher(
		external.NewDatasetClient(cfg.GoldHistoryURL, cfg.RatioHistoryURL),
		store,
		scheduler.RefresherConfig{
			Interval: time.Duration(cfg.HistoryRefreshHours) * time.Hour,
			OnCycle: func(cycleCtx context.Context) {
				if !calibrator.NeedsCalibration(cycleCtx) {
					return
				}
				sp := spot.Current(cycleCtx)
				if _, err := calibrator.Calibrate(cycleCtx, sp.Gold, sp.Silver); err != nil {
					fmt.Printf("[CALIBRATE] Daily calibration failed: %v\n", err)
				}
			},
		},
	)
	refresher.Start()

	// 2. API server
	srv := api.NewServer(store, spot, resolver, calibrator, refresher, vision, api.ServerConfig{
		Port:        cfg.Port,
		APIKey:      cfg.APIKey,
		CORSOrigin:  cfg.CORSAllowOrigin,
		DBConnected: dbConnected,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
