package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// Report is the saved commentary artifact
type Report struct {
	Timestamp   time.Time           `json:"timestamp"`
	RecordID    string              `json:"record_id"`
	Sentiment   contracts.Sentiment `json:"sentiment"`
	AvgMomentum *float64            `json:"avg_momentum,omitempty"`
	Strongest   *string             `json:"strongest,omitempty"`
	Weakest     *string             `json:"weakest,omitempty"`
	Analysis    string              `json:"analysis"`
}

// Writer saves commentary reports under the configured report folder,
// as JSON for the pipeline and as plain text for humans.
type Writer struct {
	dir string
	log *logger.Logger
}

// NewWriter creates a report writer
func NewWriter(cfg *config.Config, log *logger.Logger) *Writer {
	return &Writer{
		dir: cfg.Output.ReportDir,
		log: log.WithField("component", "analysis_writer"),
	}
}

// Write saves the commentary for one scan and returns the JSON path
func (w *Writer) Write(result *contracts.ScanResult, analysis string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	report := Report{
		Timestamp:   time.Now().UTC(),
		RecordID:    result.RecordID(),
		Sentiment:   result.Sentiment,
		AvgMomentum: result.AvgMomentum,
		Strongest:   result.Strongest,
		Weakest:     result.Weakest,
		Analysis:    analysis,
	}

	stem := "ai_market_analysis_" + result.ScanTime.Format("20060102_150405")
	jsonPath := filepath.Join(w.dir, stem+".json")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write analysis report: %w", err)
	}

	text := fmt.Sprintf("AI MARKET ANALYSIS REPORT\nGenerated: %s\nScan: %s\nSentiment: %s\n\n%s\n",
		report.Timestamp.Format(time.RFC3339), report.RecordID, report.Sentiment, analysis)
	if err := os.WriteFile(filepath.Join(w.dir, stem+".txt"), []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write analysis text: %w", err)
	}

	w.log.WithField("path", jsonPath).Info("Analysis report saved")
	return jsonPath, nil
}
