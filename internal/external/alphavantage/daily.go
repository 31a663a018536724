package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
)

// dailyResponse mirrors the TIME_SERIES_DAILY payload. Vendor errors
// come back as 200 OK with one of the message fields set.
type dailyResponse struct {
	TimeSeries   map[string]dailyBar `json:"Time Series (Daily)"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	ErrorMessage string              `json:"Error Message"`
}

type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// FetchDailySeries fetches the daily closing-price series for a ticker,
// ascending by date. minPoints only selects the output size; the vendor
// returns at least 100 observations on compact.
func (c *Client) FetchDailySeries(ctx context.Context, ticker string, minPoints int) (contracts.PriceSeries, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("alpha vantage API key not configured")
	}

	outputSize := c.cfg.OutputSize
	if minPoints > 100 {
		// compact caps at 100 observations
		outputSize = "full"
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", ticker)
	params.Set("outputsize", outputSize)
	params.Set("apikey", c.cfg.APIKey)

	fullURL := fmt.Sprintf("%s?%s", c.cfg.BaseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	series, err := parseDailyResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s response: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(series),
	}).Debug("Fetched daily series")

	return series, nil
}

// parseDailyResponse converts the vendor payload into an ascending
// PriceSeries, skipping rows with unparseable numbers.
func parseDailyResponse(body []byte) (contracts.PriceSeries, error) {
	var payload dailyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}

	// Rate-limit notes and bad-symbol errors arrive as 200 OK
	switch {
	case payload.ErrorMessage != "":
		return nil, fmt.Errorf("vendor error: %s", payload.ErrorMessage)
	case payload.Note != "":
		return nil, fmt.Errorf("vendor rate limited: %s", payload.Note)
	case payload.Information != "":
		return nil, fmt.Errorf("vendor notice: %s", payload.Information)
	case len(payload.TimeSeries) == 0:
		return nil, fmt.Errorf("empty time series")
	}

	dates := make([]string, 0, len(payload.TimeSeries))
	for d := range payload.TimeSeries {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	series := make(contracts.PriceSeries, 0, len(dates))
	for _, d := range dates {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}

		bar := payload.TimeSeries[d]
		closePrice, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil || closePrice <= 0 {
			continue
		}

		volume, _ := strconv.ParseInt(bar.Volume, 10, 64)

		series = append(series, contracts.PricePoint{
			Date:   date,
			Close:  closePrice,
			Volume: volume,
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no parseable observations")
	}

	return series, nil
}
