package api

import (
	"fmt"
	"net/http"
)

// handleCalibrationLatest serves today's (or the latest) calibration record.
// With a ?date= query it instead returns the ratios that were in effect on
// that date.
func (s *Server) handleCalibrationLatest(w http.ResponseWriter, r *http.Request) {
	if date := r.URL.Query().Get("date"); date != "" {
		if !validateDate(date) {
			writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
			return
		}
		pair := s.calibrator.RatioForDate(r.Context(), date)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"date":     date,
			"slvRatio": pair.SLVRatio,
			"gldRatio": pair.GLDRatio,
		})
		return
	}

	rec := s.calibrator.TodayRecord(r.Context())
	if rec == nil {
		writeError(w, http.StatusNotFound, "no calibration record available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"calibration": rec,
	})
}

func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	sp := s.spot.Current(r.Context())

	rec, err := s.calibrator.Calibrate(r.Context(), sp.Gold, sp.Silver)
	if err != nil {
		fmt.Printf("Error calibrating ETF ratios: %v\n", err)
		writeError(w, http.StatusBadGateway, "calibration failed, ETF quotes unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"calibration": rec,
	})
}
