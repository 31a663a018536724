package stooq

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
)

// US ETF tickers map to lowercase with a .us suffix on stooq
func stooqSymbol(ticker string) string {
	return strings.ToLower(ticker) + ".us"
}

var dateCellRe = regexp.MustCompile(`^\d{1,2} [A-Za-z]{3} \d{4}$|^\d{4}-\d{2}-\d{2}$`)

// FetchDailySeries scrapes the daily history table for a ticker,
// ascending by date. minPoints is advisory; stooq pages carry the
// most recent rows only.
func (c *Client) FetchDailySeries(ctx context.Context, ticker string, minPoints int) (contracts.PriceSeries, error) {
	fullURL := fmt.Sprintf("%s/q/d/?s=%s&i=d", c.cfg.BaseURL, stooqSymbol(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
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

	series, err := parseHistoryHTML(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s history: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(series),
	}).Debug("Fetched daily series from fallback")

	return series, nil
}

// parseHistoryHTML extracts (date, close, volume) rows from the stooq
// history table. The table layout is: No. | Date | Open | High | Low |
// Close | Change | Volume; rows that do not match are skipped.
func parseHistoryHTML(html string) (contracts.PriceSeries, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var series contracts.PriceSeries

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 6 {
			return
		}

		// Date column position differs between a numbered and an
		// unnumbered table; probe the first two cells.
		dateIdx := -1
		for idx := 0; idx < 2 && idx < cells.Length(); idx++ {
			if dateCellRe.MatchString(strings.TrimSpace(cells.Eq(idx).Text())) {
				dateIdx = idx
				break
			}
		}
		if dateIdx < 0 {
			return
		}

		date, ok := parseDateCell(strings.TrimSpace(cells.Eq(dateIdx).Text()))
		if !ok {
			return
		}

		// Open High Low Close follow the date column
		closePrice := parseNum(cells.Eq(dateIdx + 4).Text())
		if closePrice <= 0 {
			return
		}

		var volume int64
		if cells.Length() > dateIdx+5 {
			// Last cell that parses as an integer is the volume
			for idx := cells.Length() - 1; idx > dateIdx+4; idx-- {
				if v, err := strconv.ParseInt(cleanNum(cells.Eq(idx).Text()), 10, 64); err == nil {
					volume = v
					break
				}
			}
		}

		series = append(series, contracts.PricePoint{
			Date:   date,
			Close:  closePrice,
			Volume: volume,
		})
	})

	if len(series) == 0 {
		return nil, fmt.Errorf("no history rows found")
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series, nil
}

func parseDateCell(text string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2 Jan 2006"} {
		if d, err := time.Parse(layout, text); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func cleanNum(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

func parseNum(s string) float64 {
	v, err := strconv.ParseFloat(cleanNum(s), 64)
	if err != nil {
		return 0
	}
	return v
}
