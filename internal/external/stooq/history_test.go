package stooq

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/httputil"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

const sampleHistory = `<html><body>
<table>
  <tr><th>No.</th><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Change</th><th>Volume</th></tr>
  <tr><td>1</td><td>28 Aug 2026</td><td>228.10</td><td>230.00</td><td>227.50</td><td>229.40</td><td>+0.61%</td><td>5,123,456</td></tr>
  <tr><td>2</td><td>27 Aug 2026</td><td>226.00</td><td>228.40</td><td>225.90</td><td>228.00</td><td>+0.84%</td><td>4,890,000</td></tr>
  <tr><td>3</td><td>26 Aug 2026</td><td>224.10</td><td>226.70</td><td>223.80</td><td>226.10</td><td>-0.12%</td><td>5,010,000</td></tr>
  <tr><td colspan="8">advertisement</td></tr>
</table>
</body></html>`

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Stooq: config.StooqConfig{
			BaseURL: serverURL,
			Enabled: true,
		},
	}
	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log).DisableRetry()
	return NewClient(cfg, httpClient, log)
}

func TestFetchDailySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("s"); got != "xlk.us" {
			t.Errorf("expected symbol xlk.us, got %s", got)
		}
		fmt.Fprint(w, sampleHistory)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	series, err := client.FetchDailySeries(context.Background(), "XLK", 3)
	if err != nil {
		t.Fatalf("FetchDailySeries failed: %v", err)
	}

	if len(series) != 3 {
		t.Fatalf("expected 3 points, got %d", len(series))
	}

	// Page lists newest first; series must come back ascending
	for i := 1; i < len(series); i++ {
		if !series[i-1].Date.Before(series[i].Date) {
			t.Errorf("series not ascending at %d", i)
		}
	}

	last := series[len(series)-1]
	if last.Close != 229.40 {
		t.Errorf("expected last close 229.40, got %v", last.Close)
	}
	if last.Volume != 5123456 {
		t.Errorf("expected last volume 5123456, got %d", last.Volume)
	}
}

func TestParseHistoryHTMLEmptyPage(t *testing.T) {
	if _, err := parseHistoryHTML("<html><body><p>quote not found</p></body></html>"); err == nil {
		t.Error("expected error for page without history table")
	}
}

func TestStooqSymbol(t *testing.T) {
	if got := stooqSymbol("XLRE"); got != "xlre.us" {
		t.Errorf("expected xlre.us, got %s", got)
	}
}
