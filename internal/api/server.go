package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/calibration"
	"github.com/kingleosgold/stack-tracker-pro/internal/external"
	"github.com/kingleosgold/stack-tracker-pro/internal/prices"
	"github.com/kingleosgold/stack-tracker-pro/internal/scheduler"
)

const maxBulkDates = 100

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ReceiptAnalyzer extracts purchase fields from a receipt image.
type ReceiptAnalyzer interface {
	AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (*external.ReceiptFields, error)
}

type Server struct {
	store       *prices.HistoricalStore
	spot        *prices.SpotCache
	resolver    *prices.Resolver
	calibrator  *calibration.Calibrator
	refresher   *scheduler.Refresher
	vision      ReceiptAnalyzer
	dbConnected bool
	httpServer  *http.Server
	apiKey      string
}

type ServerConfig struct {
	Port        int
	APIKey      string
	CORSOrigin  string
	DBConnected bool
}

func NewServer(store *prices.HistoricalStore, spot *prices.SpotCache, resolver *prices.Resolver,
	calibrator *calibration.Calibrator, refresher *scheduler.Refresher, vision ReceiptAnalyzer,
	cfg ServerConfig) *Server {

	s := &Server{
		store:       store,
		spot:        spot,
		resolver:    resolver,
		calibrator:  calibrator,
		refresher:   refresher,
		vision:      vision,
		dbConnected: cfg.DBConnected,
		apiKey:      cfg.APIKey,
	}

	mux := http.NewServeMux()

	// Price routes
	mux.HandleFunc("GET /api/spot-prices", s.handleSpotPrices)
	mux.HandleFunc("GET /api/historical-spot", s.handleHistoricalSpot)
	mux.HandleFunc("POST /api/historical-spot/bulk", s.handleHistoricalSpotBulk)

	// Calibration routes
	mux.HandleFunc("GET /api/calibration", s.handleCalibrationLatest)
	mux.HandleFunc("POST /api/calibrate", s.handleCalibrate)

	// Receipt OCR
	mux.HandleFunc("POST /api/analyze-receipt", s.handleAnalyzeReceipt)

	// Health check (no auth required)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, cfg.CORSOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/api/health\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/api/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func validateDate(date string) bool {
	if !dateRegexp.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
