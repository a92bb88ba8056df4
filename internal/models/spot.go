package models

import "time"

// SpotPrice is a snapshot of the current gold and silver spot prices
// in USD per troy ounce.
type SpotPrice struct {
	Gold      float64   `json:"gold"`
	Silver    float64   `json:"silver"`
	FetchedAt time.Time `json:"fetchedAt"`
	Cached    bool      `json:"cached"`
	Note      string    `json:"note,omitempty"`
}
