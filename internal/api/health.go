package api

import "net/http"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	goldRecords, ratioRecords := s.store.Counts()

	database := "not configured"
	if s.dbConnected {
		database = "connected"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "ok",
		"historicalDataLoaded": s.store.Loaded(),
		"goldRecords":          goldRecords,
		"ratioRecords":         ratioRecords,
		"database":             database,
	})
}
