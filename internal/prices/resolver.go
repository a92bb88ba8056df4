package prices

import (
	"fmt"

	"github.com/kingleosgold/stack-tracker-pro/internal/models"
	"github.com/shopspring/decimal"
)

const (
	MetalGold   = "gold"
	MetalSilver = "silver"
)

// ValidMetal reports whether m names a supported metal.
func ValidMetal(m string) bool { return m == MetalGold || m == MetalSilver }

// Resolver answers historical price queries with the best available fidelity.
// There is no direct silver table: silver is always derived from the gold
// price and the gold/silver ratio. Resolution is pure over the current store
// and spot-cache snapshots; it never triggers a live fetch.
type Resolver struct {
	store        *HistoricalStore
	spot         *SpotCache
	windowDays   int
	defaultRatio float64
}

func NewResolver(store *HistoricalStore, spot *SpotCache, windowDays int, defaultRatio float64) *Resolver {
	if windowDays <= 0 {
		windowDays = DefaultNearestWindowDays
	}
	if defaultRatio <= 0 {
		defaultRatio = DefaultGoldSilverRatio
	}
	return &Resolver{store: store, spot: spot, windowDays: windowDays, defaultRatio: defaultRatio}
}

// Resolve returns the price of metal on date (YYYY-MM-DD, pre-validated by
// the caller). It always produces an answer: the final fallback tier reads
// the always-seeded spot cache.
func (r *Resolver) Resolve(date, metal string) models.ResolvedPrice {
	if metal == MetalSilver {
		return r.resolveSilver(date)
	}
	return r.resolveGold(date)
}

func (r *Resolver) resolveGold(date string) models.ResolvedPrice {
	if price, ok := r.store.GoldOn(date); ok {
		return models.ResolvedPrice{Price: price, Source: models.SourceExact}
	}

	if matched, price, ok := nearestWithin(r.store.goldSnapshot(), date, r.windowDays); ok {
		return models.ResolvedPrice{
			Price:  price,
			Source: models.SourceNearest,
			Note:   fmt.Sprintf("nearest gold record from %s", matched),
		}
	}

	snap := r.spot.Snapshot()
	return models.ResolvedPrice{
		Price:  snap.Gold,
		Source: models.SourceFallback,
		Note:   fmt.Sprintf("no gold record within %d days, using current spot", r.windowDays),
	}
}

func (r *Resolver) resolveSilver(date string) models.ResolvedPrice {
	gold, goldExact := r.store.GoldOn(date)
	ratio, ratioExact := r.store.RatioOn(date)

	switch {
	case goldExact && ratioExact:
		return models.ResolvedPrice{
			Price:  round2(gold / ratio),
			Source: models.SourceExact,
		}

	case goldExact:
		if matched, nearRatio, ok := nearestWithin(r.store.ratioSnapshot(), date, r.windowDays); ok {
			return models.ResolvedPrice{
				Price:  round2(gold / nearRatio),
				Source: models.SourceInterpolated,
				Note:   fmt.Sprintf("gold/silver ratio taken from %s", matched),
			}
		}
		return models.ResolvedPrice{
			Price:  round2(gold / r.defaultRatio),
			Source: models.SourceEstimated,
			Note:   fmt.Sprintf("no nearby ratio, assumed typical ratio of %.0f", r.defaultRatio),
		}

	default:
		if matchedGold, nearGold, ok := nearestWithin(r.store.goldSnapshot(), date, r.windowDays); ok {
			ratioToUse := r.defaultRatio
			note := fmt.Sprintf("gold from %s, assumed typical ratio of %.0f", matchedGold, r.defaultRatio)
			if matchedRatio, nearRatio, rok := nearestWithin(r.store.ratioSnapshot(), date, r.windowDays); rok {
				ratioToUse = nearRatio
				note = fmt.Sprintf("gold from %s, ratio from %s", matchedGold, matchedRatio)
			}
			return models.ResolvedPrice{
				Price:  round2(nearGold / ratioToUse),
				Source: models.SourceInterpolated,
				Note:   note,
			}
		}

		snap := r.spot.Snapshot()
		return models.ResolvedPrice{
			Price:  snap.Silver,
			Source: models.SourceFallback,
			Note:   fmt.Sprintf("no gold record within %d days, using current spot", r.windowDays),
		}
	}
}

// round2 rounds every derived silver price to 2 decimals so results are
// deterministic across tiers.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
