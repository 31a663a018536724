package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// Emitter writes one scan result as a JSON record plus a CSV sheet
// under the historical artifact folder. Emitting the same scan twice
// is a no-op: the record id is derived from the scan timestamp and an
// existing record is never overwritten.
type Emitter struct {
	dir string
	log *logger.Logger
}

// NewEmitter creates an artifact emitter rooted at the configured
// historical directory
func NewEmitter(cfg *config.Config, log *logger.Logger) *Emitter {
	return &Emitter{
		dir: cfg.Output.HistoricalDir,
		log: log.WithField("component", "emitter"),
	}
}

// Emit writes <record_id>.json and <record_id>.csv and returns the
// record id. Existing artifacts for the same id are left untouched.
func (e *Emitter) Emit(ctx context.Context, result *contracts.ScanResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	recordID := result.RecordID()
	jsonPath := filepath.Join(e.dir, recordID+".json")
	csvPath := filepath.Join(e.dir, recordID+".csv")

	if _, err := os.Stat(jsonPath); err == nil {
		e.log.WithField("record_id", recordID).Debug("Scan record already emitted, skipping")
		return recordID, nil
	}

	// The JSON record is the idempotency marker, so it goes last; a
	// failure partway through leaves a record that will be re-emitted
	if err := writeCSV(csvPath, result); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode scan record: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write scan record: %w", err)
	}

	e.log.WithFields(map[string]interface{}{
		"record_id": recordID,
		"sectors":   len(result.Sectors),
	}).Info("Scan record emitted")

	return recordID, nil
}

// writeCSV renders the per-sector sheet. Window columns follow the
// window horizon, shortest first; unavailable values stay empty so a
// spreadsheet does not mistake them for zero.
func writeCSV(path string, result *contracts.ScanResult) error {
	windows := windowColumns(result)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV sheet: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"ticker", "name", "group", "last_close"}
	for _, win := range windows {
		header = append(header, "return_"+win)
	}
	header = append(header, "momentum_score", "volume_trend", "rs_vs_sma20", "trend")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range result.Sectors {
		row := []string{s.Ticker, s.Name, s.Group, fmtFloat(s.LastClose)}
		for _, win := range windows {
			row = append(row, fmtFloat(s.Returns[win]))
		}
		row = append(row, fmtFloat(s.Momentum), fmtFloat(s.VolumeTrend), fmtFloat(s.RSvsSMA20), string(s.Trend))
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV sheet: %w", err)
	}
	return nil
}

// windowColumns collects the window names present in the result and
// orders them by their numeric horizon ("1d" before "5d" before "20d")
func windowColumns(result *contracts.ScanResult) []string {
	seen := make(map[string]struct{})
	var windows []string
	for _, s := range result.Sectors {
		for win := range s.Returns {
			if _, ok := seen[win]; !ok {
				seen[win] = struct{}{}
				windows = append(windows, win)
			}
		}
	}
	sort.Slice(windows, func(i, j int) bool {
		ni, nj := windowHorizon(windows[i]), windowHorizon(windows[j])
		if ni != nj {
			return ni < nj
		}
		return windows[i] < windows[j]
	})
	return windows
}

func windowHorizon(name string) int {
	digits := strings.TrimRightFunc(name, func(r rune) bool {
		return r < '0' || r > '9'
	})
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func fmtFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}
