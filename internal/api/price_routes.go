package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/prices"
)

type spotResponse struct {
	Success   bool    `json:"success"`
	Gold      float64 `json:"gold"`
	Silver    float64 `json:"silver"`
	Timestamp *string `json:"timestamp"`
	Cached    bool    `json:"cached"`
	Note      string  `json:"note,omitempty"`
}

func (s *Server) handleSpotPrices(w http.ResponseWriter, r *http.Request) {
	sp := s.spot.Current(r.Context())

	// Upstream failure still serves the last known values with a note.
	resp := spotResponse{
		Success: true,
		Gold:    sp.Gold,
		Silver:  sp.Silver,
		Cached:  sp.Cached,
		Note:    sp.Note,
	}
	if !sp.FetchedAt.IsZero() {
		ts := sp.FetchedAt.UTC().Format(time.RFC3339)
		resp.Timestamp = &ts
	}
	writeJSON(w, http.StatusOK, resp)
}

type historicalResponse struct {
	Success bool    `json:"success"`
	Date    string  `json:"date"`
	Metal   string  `json:"metal"`
	Price   float64 `json:"price"`
	Source  string  `json:"source"`
	Note    string  `json:"note,omitempty"`
}

func (s *Server) handleHistoricalSpot(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !validateDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	metal := r.URL.Query().Get("metal")
	if metal == "" {
		metal = prices.MetalGold
	}
	if !prices.ValidMetal(metal) {
		writeError(w, http.StatusBadRequest, "invalid metal, expected gold or silver")
		return
	}

	resolved := s.resolver.Resolve(date, metal)
	writeJSON(w, http.StatusOK, historicalResponse{
		Success: true,
		Date:    date,
		Metal:   metal,
		Price:   resolved.Price,
		Source:  resolved.Source,
		Note:    resolved.Note,
	})
}

type bulkRequest struct {
	Dates []string `json:"dates"`
	Metal string   `json:"metal"`
}

type bulkResponse struct {
	Success bool               `json:"success"`
	Metal   string             `json:"metal"`
	Prices  map[string]float64 `json:"prices"`
}

func (s *Server) handleHistoricalSpotBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	metal := req.Metal
	if metal == "" {
		metal = prices.MetalGold
	}
	if !prices.ValidMetal(metal) {
		writeError(w, http.StatusBadRequest, "invalid metal, expected gold or silver")
		return
	}

	dates := req.Dates
	if len(dates) > maxBulkDates {
		dates = dates[:maxBulkDates]
	}

	// Malformed dates are skipped rather than failing the batch.
	out := make(map[string]float64, len(dates))
	for _, date := range dates {
		if !validateDate(date) {
			continue
		}
		out[date] = s.resolver.Resolve(date, metal).Price
	}

	writeJSON(w, http.StatusOK, bulkResponse{Success: true, Metal: metal, Prices: out})
}
