package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/httputil"
)

const defaultETFBaseURL = "https://query2.finance.yahoo.com"

var ErrNoQuote = errors.New("etf: no quote available")

// ETFClient fetches current ETF share prices from the Yahoo Finance chart
// endpoint. Used by the calibrator for SLV and GLD.
type ETFClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewETFClient(baseURL string) *ETFClient {
	if baseURL == "" {
		baseURL = defaultETFBaseURL
	}
	return &ETFClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 8 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   1 * time.Second,
			MaxDelay:    4 * time.Second,
		},
	}
}

// Quote returns the latest traded price for symbol. When the meta price is
// missing it falls back to the last non-zero minute close.
func (c *ETFClient) Quote(ctx context.Context, symbol string) (float64, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", c.baseURL, symbol)

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "stack-tracker/1.0")
		return req, nil
	})
	if err != nil {
		return 0, fmt.Errorf("quote %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote %s: status %d", symbol, resp.StatusCode)
	}

	var raw struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice float64 `json:"regularMarketPrice"`
				} `json:"meta"`
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return 0, fmt.Errorf("quote %s: decode: %w", symbol, err)
	}
	if len(raw.Chart.Result) == 0 {
		return 0, ErrNoQuote
	}

	r := raw.Chart.Result[0]
	price := r.Meta.RegularMarketPrice

	if price <= 0 && len(r.Indicators.Quote) > 0 && len(r.Indicators.Quote[0].Close) == len(r.Timestamp) {
		for i := len(r.Timestamp) - 1; i >= 0; i-- {
			if c := r.Indicators.Quote[0].Close[i]; c > 0 {
				price = c
				break
			}
		}
	}

	if price <= 0 {
		return 0, ErrNoQuote
	}
	return price, nil
}
