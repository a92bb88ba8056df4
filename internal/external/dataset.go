package external

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/httputil"
	"github.com/kingleosgold/stack-tracker-pro/internal/prices"
)

// DatasetClient downloads the public historical gold-price dataset (JSON) and
// the gold/silver ratio dataset (CSV). Both are refreshed on a daily schedule,
// so the clients retry with backoff rather than failing fast.
type DatasetClient struct {
	goldURL    string
	ratioURL   string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewDatasetClient(goldURL, ratioURL string) *DatasetClient {
	return &DatasetClient{
		goldURL:    goldURL,
		ratioURL:   ratioURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

// FetchGoldHistory returns the date→price table. Entries with malformed
// dates or non-positive prices are skipped.
func (c *DatasetClient) FetchGoldHistory(ctx context.Context) (map[string]float64, error) {
	var rows []struct {
		Date  string  `json:"date"`
		Price float64 `json:"price"`
	}
	if err := httputil.GetJSON(ctx, c.httpClient, c.retry, c.goldURL, &rows); err != nil {
		return nil, fmt.Errorf("gold history: %w", err)
	}

	table := make(map[string]float64, len(rows))
	skipped := 0
	for _, row := range rows {
		if _, err := prices.ParseDay(row.Date); err != nil || row.Price <= 0 {
			skipped++
			continue
		}
		table[row.Date] = row.Price
	}
	if skipped > 0 {
		fmt.Printf("[HISTORY] Skipped %d malformed gold entries\n", skipped)
	}
	if len(table) == 0 {
		return nil, errors.New("gold history: no usable entries")
	}
	return table, nil
}

// FetchRatioHistory returns the date→ratio table from the CSV feed.
// Rows are date,ratio; a header row is tolerated and malformed rows are
// skipped one by one.
func (c *DatasetClient) FetchRatioHistory(ctx context.Context) (map[string]float64, error) {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.ratioURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("ratio history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ratio history: status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, we validate per row

	table := make(map[string]float64)
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(record) < 2 {
			skipped++
			continue
		}
		date, raw := record[0], record[1]
		if _, err := prices.ParseDay(date); err != nil {
			skipped++ // header row lands here too
			continue
		}
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil || ratio <= 0 {
			skipped++
			continue
		}
		table[date] = ratio
	}
	if skipped > 0 {
		fmt.Printf("[HISTORY] Skipped %d malformed ratio rows\n", skipped)
	}
	if len(table) == 0 {
		return nil, errors.New("ratio history: no usable rows")
	}
	return table, nil
}
