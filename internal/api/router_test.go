package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeorgeHategan/sector-rotation/internal/api/handlers"
	"github.com/GeorgeHategan/sector-rotation/internal/collector"
	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/markethours"
	"github.com/GeorgeHategan/sector-rotation/internal/report"
	"github.com/GeorgeHategan/sector-rotation/internal/scanconfig"
	"github.com/GeorgeHategan/sector-rotation/internal/scanner"
	"github.com/GeorgeHategan/sector-rotation/internal/scoring"
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

type fakeStore struct {
	latest *contracts.ScanResult
	scans  []*contracts.ScanResult
	saved  []*contracts.ScanResult
}

func (s *fakeStore) Save(ctx context.Context, result *contracts.ScanResult) error {
	s.saved = append(s.saved, result)
	return nil
}

func (s *fakeStore) Latest(ctx context.Context) (*contracts.ScanResult, error) {
	if s.latest == nil {
		return nil, report.ErrNoScans
	}
	return s.latest, nil
}

func (s *fakeStore) Range(ctx context.Context, from, to time.Time) ([]*contracts.ScanResult, error) {
	return s.scans, nil
}

type fakeEmitter struct {
	emitted []*contracts.ScanResult
}

func (e *fakeEmitter) Emit(ctx context.Context, result *contracts.ScanResult) (string, error) {
	e.emitted = append(e.emitted, result)
	return result.RecordID(), nil
}

type fixedProvider struct {
	series contracts.PriceSeries
}

func (p *fixedProvider) Name() string { return "fixed" }
func (p *fixedProvider) FetchDailySeries(ctx context.Context, ticker string, minPoints int) (contracts.PriceSeries, error) {
	return p.series, nil
}

func apiScanConfig() *scanconfig.Config {
	return &scanconfig.Config{
		Meta: scanconfig.Meta{ConfigID: "api-test", Version: "1"},
		Sectors: []scanconfig.Sector{
			{Ticker: "XLK", Name: "Technology", Group: contracts.GroupCyclical},
			{Ticker: "XLU", Name: "Utilities", Group: contracts.GroupDefensive},
		},
		Windows:   []scanconfig.Window{{Name: "1d", Length: 1, Weight: 1}},
		Sentiment: scanconfig.Sentiment{Threshold: 0.5},
		Trend:     scanconfig.Trend{StrongThreshold: 1.5, WeakThreshold: 0.5, VolumeShort: 5, VolumeLong: 20},
		Fetch:     scanconfig.Fetch{Workers: 2},
	}
}

func flatSeries(n int) contracts.PriceSeries {
	series := make(contracts.PriceSeries, n)
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := range series {
		series[i] = contracts.PricePoint{Date: day.AddDate(0, 0, i), Close: 100, Volume: 1000}
	}
	return series
}

func testRouter(t *testing.T, store contracts.ScanStore) http.Handler {
	t.Helper()

	cfg := &config.Config{LogLevel: "error", LogFormat: "json"}
	log := logger.New(cfg)
	scanCfg := apiScanConfig()

	scorer, err := scoring.New(scanCfg, log)
	require.NoError(t, err)

	gate, err := markethours.NewGate()
	require.NoError(t, err)

	col := collector.NewCollector(scanCfg, nil, log, &fixedProvider{series: flatSeries(30)})
	runner := scanner.NewRunner(col, scorer, gate, &fakeEmitter{}, store, nil, log)

	scanHandler := handlers.NewScanHandler(store, runner, scanCfg, log)
	return NewRouter(scanHandler, nil, nil, log)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, &fakeStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetLatestNotFound(t *testing.T) {
	router := testRouter(t, &fakeStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/scans/latest", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestReturnsScan(t *testing.T) {
	scan := &contracts.ScanResult{
		ScanTime:  time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC),
		Sentiment: contracts.SentimentNeutral,
	}
	router := testRouter(t, &fakeStore{latest: scan})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/scans/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, scan.ScanTime, got.ScanTime)
	assert.Equal(t, contracts.SentimentNeutral, got.Sentiment)
}

func TestGetRangeValidatesDates(t *testing.T) {
	router := testRouter(t, &fakeStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/scans?from=28-08-2026", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/scans?from=2026-08-28&to=2026-08-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRangeReturnsScans(t *testing.T) {
	store := &fakeStore{scans: []*contracts.ScanResult{
		{ScanTime: time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC), Sentiment: contracts.SentimentRiskOn},
		{ScanTime: time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC), Sentiment: contracts.SentimentRiskOff},
	}}
	router := testRouter(t, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/scans?from=2026-08-01&to=2026-08-31", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int                     `json:"count"`
		Scans []*contracts.ScanResult `json:"scans"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Scans, 2)
}

func TestGetSectors(t *testing.T) {
	router := testRouter(t, &fakeStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/sectors", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int                   `json:"count"`
		Sectors []handlers.SectorInfo `json:"sectors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "XLK", body.Sectors[0].Ticker)
}

func TestTriggerForcedScan(t *testing.T) {
	store := &fakeStore{}
	router := testRouter(t, store)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/scans", strings.NewReader(`{"force":true}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got contracts.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Sectors, 2)

	// forced scans still land in history
	assert.Len(t, store.saved, 1)
}
