package models

import "time"

// CalibrationRecord captures the ETF-to-spot conversion ratios computed for a
// single calendar day. Ratios are always etfPrice / spotPrice, so drift from
// fund expenses is corrected when converting ETF quotes back to metal prices.
// Exactly one record may exist per date; recalibration replaces it.
type CalibrationRecord struct {
	Date       string    `json:"date"` // YYYY-MM-DD
	SLVRatio   float64   `json:"slvRatio"`
	GLDRatio   float64   `json:"gldRatio"`
	SLVPrice   float64   `json:"slvPrice"`
	GLDPrice   float64   `json:"gldPrice"`
	GoldSpot   float64   `json:"goldSpot"`
	SilverSpot float64   `json:"silverSpot"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// RatioPair is the subset of a calibration record needed to convert
// ETF quotes to spot prices.
type RatioPair struct {
	SLVRatio float64 `json:"slvRatio"`
	GLDRatio float64 `json:"gldRatio"`
}
