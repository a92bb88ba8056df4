package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultSpotBaseURL = "https://api.gold-api.com"

// SpotClient fetches live gold and silver spot prices. Each call is a single
// attempt bounded by the configured timeout: on failure the spot cache serves
// stale values, and the next request retries naturally.
type SpotClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewSpotClient(baseURL string, timeout time.Duration) *SpotClient {
	if baseURL == "" {
		baseURL = defaultSpotBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SpotClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchSpot returns both spot prices in USD per troy ounce. A missing or
// non-positive price for either metal fails the whole call — the cache must
// never be updated from a partial response.
func (c *SpotClient) FetchSpot(ctx context.Context) (gold, silver float64, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.fetchSymbol(gctx, "XAU")
		gold = v
		return err
	})
	g.Go(func() error {
		v, err := c.fetchSymbol(gctx, "XAG")
		silver = v
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return gold, silver, nil
}

func (c *SpotClient) fetchSymbol(ctx context.Context, symbol string) (float64, error) {
	addr := fmt.Sprintf("%s/price/%s", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("spot fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("spot fetch %s: status %d", symbol, resp.StatusCode)
	}

	var data struct {
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
		UpdatedAt string  `json:"updatedAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode %s: %w", symbol, err)
	}

	if data.Price <= 0 {
		return 0, fmt.Errorf("invalid %s price: %f", symbol, data.Price)
	}
	return data.Price, nil
}
