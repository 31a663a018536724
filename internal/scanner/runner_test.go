package scanner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeorgeHategan/sector-rotation/internal/collector"
	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/markethours"
	"github.com/GeorgeHategan/sector-rotation/internal/scanconfig"
	"github.com/GeorgeHategan/sector-rotation/internal/scoring"
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

type recordingEmitter struct {
	emitted []*contracts.ScanResult
	err     error
}

func (e *recordingEmitter) Emit(ctx context.Context, result *contracts.ScanResult) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.emitted = append(e.emitted, result)
	return result.RecordID(), nil
}

type recordingStore struct {
	saved []*contracts.ScanResult
	err   error
}

func (s *recordingStore) Save(ctx context.Context, result *contracts.ScanResult) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, result)
	return nil
}

func (s *recordingStore) Latest(ctx context.Context) (*contracts.ScanResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *recordingStore) Range(ctx context.Context, from, to time.Time) ([]*contracts.ScanResult, error) {
	return nil, fmt.Errorf("not implemented")
}

type recordingNotifier struct {
	notified []*contracts.ScanResult
}

func (n *recordingNotifier) NotifyScan(result *contracts.ScanResult) {
	n.notified = append(n.notified, result)
}

type staticProvider struct {
	series contracts.PriceSeries
}

func (p *staticProvider) Name() string { return "static" }
func (p *staticProvider) FetchDailySeries(ctx context.Context, ticker string, minPoints int) (contracts.PriceSeries, error) {
	return p.series, nil
}

func runnerScanConfig() *scanconfig.Config {
	return &scanconfig.Config{
		Meta: scanconfig.Meta{ConfigID: "runner-test", Version: "1"},
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

func risingSeries(n int) contracts.PriceSeries {
	series := make(contracts.PriceSeries, n)
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := range series {
		series[i] = contracts.PricePoint{Date: day.AddDate(0, 0, i), Close: 100 + float64(i), Volume: 1000}
	}
	return series
}

func newTestRunner(t *testing.T, emitter contracts.ScanEmitter, store contracts.ScanStore, notifier contracts.ScanNotifier) *Runner {
	t.Helper()

	cfg := &config.Config{LogLevel: "error", LogFormat: "json"}
	log := logger.New(cfg)
	scanCfg := runnerScanConfig()

	scorer, err := scoring.New(scanCfg, log)
	require.NoError(t, err)

	gate, err := markethours.NewGate()
	require.NoError(t, err)

	col := collector.NewCollector(scanCfg, nil, log, &staticProvider{series: risingSeries(30)})
	return NewRunner(col, scorer, gate, emitter, store, notifier, log)
}

func TestRunScanForcedPipeline(t *testing.T) {
	emitter := &recordingEmitter{}
	store := &recordingStore{}
	notifier := &recordingNotifier{}
	runner := newTestRunner(t, emitter, store, notifier)

	result, err := runner.RunScan(context.Background(), true)
	require.NoError(t, err)

	assert.Len(t, result.Sectors, 2)
	require.Len(t, emitter.emitted, 1)
	require.Len(t, store.saved, 1)
	require.Len(t, notifier.notified, 1)
	assert.Same(t, result, notifier.notified[0])
}

func TestRunScanStoreFailureIsNotFatal(t *testing.T) {
	emitter := &recordingEmitter{}
	store := &recordingStore{err: fmt.Errorf("db down")}
	runner := newTestRunner(t, emitter, store, nil)

	result, err := runner.RunScan(context.Background(), true)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Len(t, emitter.emitted, 1)
}

func TestRunScanEmitFailureIsFatal(t *testing.T) {
	emitter := &recordingEmitter{err: fmt.Errorf("disk full")}
	runner := newTestRunner(t, emitter, nil, nil)

	_, err := runner.RunScan(context.Background(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRunScanWithoutStoreAndNotifier(t *testing.T) {
	emitter := &recordingEmitter{}
	runner := newTestRunner(t, emitter, nil, nil)

	result, err := runner.RunScan(context.Background(), true)
	require.NoError(t, err)
	assert.NotNil(t, result)
}
