package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/scanconfig"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
	"github.com/GeorgeHategan/sector-rotation/pkg/redis"
)

// Collector fetches the price series for every configured sector.
// Providers are tried in order per ticker; a per-ticker failure leaves
// that sector without data and never aborts the run. Fetched series go
// through a short-TTL read-through cache so repeated intraday scans do
// not re-hit the vendors.
type Collector struct {
	cfg       *scanconfig.Config
	providers []contracts.PriceProvider
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewCollector creates a new Collector. cache may be nil.
func NewCollector(cfg *scanconfig.Config, cache *redis.Cache, log *logger.Logger, providers ...contracts.PriceProvider) *Collector {
	return &Collector{
		cfg:       cfg,
		providers: providers,
		cache:     cache,
		logger:    log.WithField("module", "collector"),
	}
}

// FetchResult records the outcome of one ticker fetch
type FetchResult struct {
	Ticker   string
	Provider string
	Points   int
	Cached   bool
	Error    error
}

// FetchAll fetches every sector series with a bounded worker pool and
// returns the assembled ticker -> series map. Tickers that failed on
// every provider are absent from the map and carry an error in their
// FetchResult.
func (c *Collector) FetchAll(ctx context.Context) (map[string]contracts.PriceSeries, []FetchResult) {
	minPoints := c.cfg.MinPoints()

	c.logger.WithFields(map[string]interface{}{
		"sectors":    len(c.cfg.Sectors),
		"min_points": minPoints,
		"workers":    c.cfg.Fetch.Workers,
	}).Info("Starting sector collection")

	tickerCh := make(chan string, len(c.cfg.Sectors))
	resultCh := make(chan fetchOutcome, len(c.cfg.Sectors))

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Fetch.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.worker(ctx, workerID, minPoints, tickerCh, resultCh)
		}(i)
	}

	for _, sec := range c.cfg.Sectors {
		tickerCh <- sec.Ticker
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Single-threaded merge: each ticker key is written exactly once
	seriesMap := make(map[string]contracts.PriceSeries, len(c.cfg.Sectors))
	results := make([]FetchResult, 0, len(c.cfg.Sectors))
	successCount := 0
	failCount := 0

	for outcome := range resultCh {
		results = append(results, outcome.result)
		if outcome.result.Error != nil {
			failCount++
			continue
		}
		seriesMap[outcome.result.Ticker] = outcome.series
		successCount++
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Sector collection completed")

	return seriesMap, results
}

type fetchOutcome struct {
	result FetchResult
	series contracts.PriceSeries
}

// worker processes tickers from the channel until it is drained
func (c *Collector) worker(ctx context.Context, workerID, minPoints int, tickerCh <-chan string, resultCh chan<- fetchOutcome) {
	for ticker := range tickerCh {
		select {
		case <-ctx.Done():
			resultCh <- fetchOutcome{result: FetchResult{Ticker: ticker, Error: ctx.Err()}}
			return
		default:
		}

		series, result := c.fetchOne(ctx, ticker, minPoints)
		if result.Error != nil {
			c.logger.WithError(result.Error).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": ticker,
			}).Error("Failed to fetch sector series")
		}
		resultCh <- fetchOutcome{result: result, series: series}
	}
}

// fetchOne resolves a single ticker: cache first, then each provider
// in order, caching the first success.
func (c *Collector) fetchOne(ctx context.Context, ticker string, minPoints int) (contracts.PriceSeries, FetchResult) {
	cacheKey := redis.SeriesKey(ticker, time.Now().UTC().Format("2006-01-02"))

	if c.cache != nil {
		var cached contracts.PriceSeries
		found, err := c.cache.Get(ctx, cacheKey, &cached)
		if err == nil && found && len(cached) > 0 {
			return cached, FetchResult{Ticker: ticker, Provider: "cache", Points: len(cached), Cached: true}
		}
	}

	var lastErr error
	for _, provider := range c.providers {
		series, err := provider.FetchDailySeries(ctx, ticker, minPoints)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", provider.Name(), err)
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"ticker":   ticker,
				"provider": provider.Name(),
			}).Warn("Provider fetch failed, trying next")
			continue
		}

		if c.cache != nil {
			if err := c.cache.Set(ctx, cacheKey, series, redis.TTLMedium); err != nil {
				c.logger.WithError(err).WithField("ticker", ticker).Warn("Failed to cache series")
			}
		}

		return series, FetchResult{Ticker: ticker, Provider: provider.Name(), Points: len(series)}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no providers configured")
	}
	return nil, FetchResult{Ticker: ticker, Error: lastErr}
}
