package calibration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/models"
	"github.com/kingleosgold/stack-tracker-pro/internal/repository"
	"github.com/shopspring/decimal"
)

// Default ratios used before any calibration exists. Derived from typical
// SLV/GLD tracking levels against the seed spot prices.
const (
	DefaultSLVRatio = 0.92
	DefaultGLDRatio = 0.093
)

const dateLayout = "2006-01-02"

var ErrQuotesUnavailable = errors.New("calibration: ETF quotes unavailable")

// QuoteProvider returns the current traded price for an ETF symbol.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (float64, error)
}

// Calibrator computes the ETF-price-to-spot-price ratio for SLV and GLD once
// per calendar day, correcting for tracking drift from fund expenses. It
// keeps today's record in memory so reads stay correct even when the backing
// store is unavailable; persistence is strictly best-effort.
type Calibrator struct {
	quotes QuoteProvider
	store  repository.CalibrationStore

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	today *models.CalibrationRecord
}

func NewCalibrator(quotes QuoteProvider, store repository.CalibrationStore) *Calibrator {
	return &Calibrator{
		quotes: quotes,
		store:  store,
		Now:    time.Now,
	}
}

// Calibrate fetches both ETF quotes and records today's ratios. If either
// quote is unavailable the whole calibration aborts: no partial ratios, no
// cache or store mutation. A failed persist is logged and swallowed — the
// in-memory record already serves same-process reads.
func (c *Calibrator) Calibrate(ctx context.Context, goldSpot, silverSpot float64) (*models.CalibrationRecord, error) {
	if goldSpot <= 0 || silverSpot <= 0 {
		return nil, fmt.Errorf("calibration: spot prices must be positive (gold=%f silver=%f)", goldSpot, silverSpot)
	}

	slvPrice, err := c.quotes.Quote(ctx, "SLV")
	if err != nil || slvPrice <= 0 {
		return nil, fmt.Errorf("%w: SLV: %v", ErrQuotesUnavailable, err)
	}
	gldPrice, err := c.quotes.Quote(ctx, "GLD")
	if err != nil || gldPrice <= 0 {
		return nil, fmt.Errorf("%w: GLD: %v", ErrQuotesUnavailable, err)
	}

	now := c.Now()
	rec := &models.CalibrationRecord{
		Date:       now.Format(dateLayout),
		SLVRatio:   ratio(slvPrice, silverSpot),
		GLDRatio:   ratio(gldPrice, goldSpot),
		SLVPrice:   slvPrice,
		GLDPrice:   gldPrice,
		GoldSpot:   goldSpot,
		SilverSpot: silverSpot,
		UpdatedAt:  now.UTC(),
	}

	c.mu.Lock()
	c.today = rec
	c.mu.Unlock()

	if err := c.store.Upsert(ctx, rec); err != nil {
		fmt.Printf("[CALIBRATE] Persist failed (keeping in-memory record): %v\n", err)
	} else {
		fmt.Printf("[CALIBRATE] %s: slvRatio=%.4f gldRatio=%.5f\n", rec.Date, rec.SLVRatio, rec.GLDRatio)
	}

	return rec, nil
}

// RatioForDate returns the ratios that were in effect on the given date:
// today's in-memory record, else the most recent persisted record on or
// before the date, else the hardcoded defaults. A calibration from a later
// date is never applied retroactively.
func (c *Calibrator) RatioForDate(ctx context.Context, date string) models.RatioPair {
	c.mu.Lock()
	today := c.today
	c.mu.Unlock()

	if today != nil && today.Date == date {
		return models.RatioPair{SLVRatio: today.SLVRatio, GLDRatio: today.GLDRatio}
	}

	rec, err := c.store.GetAsOf(ctx, date)
	if err != nil {
		fmt.Printf("[CALIBRATE] Lookup for %s failed, using defaults: %v\n", date, err)
	}
	if rec != nil {
		return models.RatioPair{SLVRatio: rec.SLVRatio, GLDRatio: rec.GLDRatio}
	}

	return models.RatioPair{SLVRatio: DefaultSLVRatio, GLDRatio: DefaultGLDRatio}
}

// TodayRecord returns today's calibration, from memory or the store, or nil
// when no calibration has run yet.
func (c *Calibrator) TodayRecord(ctx context.Context) *models.CalibrationRecord {
	c.mu.Lock()
	today := c.today
	c.mu.Unlock()
	if today != nil {
		return today
	}

	rec, err := c.store.GetLatest(ctx)
	if err != nil {
		return nil
	}
	return rec
}

// NeedsCalibration reports whether no calibration record exists for today,
// checked against the most recent record rather than an exact-date lookup.
func (c *Calibrator) NeedsCalibration(ctx context.Context) bool {
	today := c.Now().Format(dateLayout)

	c.mu.Lock()
	cached := c.today
	c.mu.Unlock()
	if cached != nil && cached.Date == today {
		return false
	}

	latest, err := c.store.GetLatest(ctx)
	if err != nil {
		fmt.Printf("[CALIBRATE] NeedsCalibration lookup failed, assuming yes: %v\n", err)
		return true
	}
	return latest == nil || latest.Date != today
}

// ratio computes etfPrice / spotPrice with decimal arithmetic so the stored
// value does not pick up float division noise.
func ratio(etfPrice, spotPrice float64) float64 {
	v, _ := decimal.NewFromFloat(etfPrice).
		DivRound(decimal.NewFromFloat(spotPrice), 8).
		Float64()
	return v
}
