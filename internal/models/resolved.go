package models

// Price sources, ordered from most to least trustworthy. A resolver must
// exhaust a higher tier before falling to the next one.
const (
	SourceExact        = "exact"        // record exists for the requested date
	SourceInterpolated = "interpolated" // derived from an exact value plus a nearby auxiliary value
	SourceEstimated    = "estimated"    // exact value plus the default gold/silver ratio
	SourceNearest      = "nearest"      // closest same-metal record within the lookup window
	SourceFallback     = "fallback"     // live spot cache or seed value
)

// ResolvedPrice is the answer to "what did metal M cost on date D".
// Note explains how the price was derived.
type ResolvedPrice struct {
	Price  float64 `json:"price"`
	Source string  `json:"source"`
	Note   string  `json:"note,omitempty"`
}
