package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	return &config.Config{
		LogLevel:  "error",
		LogFormat: "json",
		Output: config.OutputConfig{
			HistoricalDir: filepath.Join(base, "historical"),
			ReportDir:     filepath.Join(base, "reports"),
			DocsDir:       filepath.Join(base, "docs"),
			RetentionDays: 7,
		},
	}
}

func sampleResult() *contracts.ScanResult {
	score := 2.5
	close := 187.3
	ret1d := 1.2
	strongest := "XLK"
	return &contracts.ScanResult{
		ScanTime:   time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC),
		ConfigHash: "abc123",
		Sectors: []contracts.SectorSnapshot{
			{
				Ticker:    "XLK",
				Name:      "Technology",
				Group:     contracts.GroupCyclical,
				LastClose: &close,
				Returns:   map[string]*float64{"1d": &ret1d, "5d": nil, "20d": nil},
				Momentum:  &score,
				Trend:     contracts.TrendBuying,
			},
			{
				Ticker:  "XLU",
				Name:    "Utilities",
				Group:   contracts.GroupDefensive,
				Returns: map[string]*float64{"1d": nil, "5d": nil, "20d": nil},
				Trend:   contracts.TrendUnavailable,
			},
		},
		Ranking:   []contracts.RankedSector{{Ticker: "XLK", Score: score}},
		Strongest: &strongest,
		Sentiment: contracts.SentimentUnavailable,
	}
}

func TestEmitWritesJSONAndCSV(t *testing.T) {
	cfg := testConfig(t)
	emitter := NewEmitter(cfg, logger.New(cfg))

	result := sampleResult()
	recordID, err := emitter.Emit(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, "sector_rotation_20260828_153000", recordID)

	data, err := os.ReadFile(filepath.Join(cfg.Output.HistoricalDir, recordID+".json"))
	require.NoError(t, err)

	var decoded contracts.ScanResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.ScanTime, decoded.ScanTime)
	assert.Len(t, decoded.Sectors, 2)
	require.NotNil(t, decoded.Strongest)
	assert.Equal(t, "XLK", *decoded.Strongest)

	f, err := os.Open(filepath.Join(cfg.Output.HistoricalDir, recordID+".csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t,
		[]string{"ticker", "name", "group", "last_close", "return_1d", "return_5d", "return_20d",
			"momentum_score", "volume_trend", "rs_vs_sma20", "trend"},
		rows[0])
	assert.Equal(t, "XLK", rows[1][0])
	assert.Equal(t, "1.2000", rows[1][4])

	// unavailable values stay empty, not zero
	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "", rows[2][4])
	assert.Equal(t, "UNAVAILABLE", rows[2][10])
}

func TestEmitIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	emitter := NewEmitter(cfg, logger.New(cfg))

	result := sampleResult()
	recordID, err := emitter.Emit(context.Background(), result)
	require.NoError(t, err)

	jsonPath := filepath.Join(cfg.Output.HistoricalDir, recordID+".json")
	before, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	// second emit of the same scan leaves the record untouched
	again, err := emitter.Emit(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, recordID, again)

	after, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEmitRetriesAfterPartialFirstWrite(t *testing.T) {
	cfg := testConfig(t)
	emitter := NewEmitter(cfg, logger.New(cfg))

	result := sampleResult()
	recordID := result.RecordID()

	// an interrupted earlier emit left the CSV without its JSON record
	require.NoError(t, os.MkdirAll(cfg.Output.HistoricalDir, 0o755))
	csvPath := filepath.Join(cfg.Output.HistoricalDir, recordID+".csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("truncated"), 0o644))

	again, err := emitter.Emit(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, recordID, again)

	_, err = os.Stat(filepath.Join(cfg.Output.HistoricalDir, recordID+".json"))
	require.NoError(t, err)

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ticker", rows[0][0])
}

func TestPublisherWritesAndReadsBack(t *testing.T) {
	cfg := testConfig(t)
	publisher := NewPublisher(cfg, logger.New(cfg))

	result := sampleResult()
	require.NoError(t, publisher.Publish(context.Background(), result, "rotation favors tech"))

	payload, err := publisher.Latest()
	require.NoError(t, err)
	assert.Equal(t, "rotation favors tech", payload.Analysis)
	require.NotNil(t, payload.Scan)
	assert.Equal(t, result.ScanTime, payload.Scan.ScanTime)
	assert.False(t, payload.GeneratedAt.IsZero())

	// republishing replaces, never accumulates
	require.NoError(t, publisher.Publish(context.Background(), result, ""))
	payload, err = publisher.Latest()
	require.NoError(t, err)
	assert.Empty(t, payload.Analysis)

	entries, err := os.ReadDir(cfg.Output.DocsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCleanerRemovesOnlyExpiredFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Output.HistoricalDir, 0o755))
	require.NoError(t, os.MkdirAll(cfg.Output.ReportDir, 0o755))

	now := time.Now()
	stale := filepath.Join(cfg.Output.HistoricalDir, "sector_rotation_20260801_153000.json")
	fresh := filepath.Join(cfg.Output.HistoricalDir, "sector_rotation_20260828_153000.json")
	staleReport := filepath.Join(cfg.Output.ReportDir, "analysis_20260801.md")

	for _, path := range []string{stale, fresh, staleReport} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	old := now.Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(staleReport, old, old))

	cleaner := NewCleaner(cfg, logger.New(cfg))
	removed, err := cleaner.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanerSkipsMissingDirs(t *testing.T) {
	cfg := testConfig(t)
	cleaner := NewCleaner(cfg, logger.New(cfg))

	removed, err := cleaner.Run(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
