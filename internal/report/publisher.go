package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// latestFile is the name of the published snapshot inside the docs
// folder, picked up by the static dashboard.
const latestFile = "latest_data.json"

// PagesPayload is the shape of the published snapshot
type PagesPayload struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Scan        *contracts.ScanResult `json:"scan"`
	Analysis    string                `json:"analysis,omitempty"`
}

// Publisher maintains the docs folder consumed by the static
// dashboard: the latest scan, optionally paired with the latest AI
// commentary, always under the same file name.
type Publisher struct {
	dir string
	log *logger.Logger
}

// NewPublisher creates a publisher rooted at the configured docs folder
func NewPublisher(cfg *config.Config, log *logger.Logger) *Publisher {
	return &Publisher{
		dir: cfg.Output.DocsDir,
		log: log.WithField("component", "publisher"),
	}
}

// Publish overwrites the published snapshot with the given scan.
// analysis may be empty when no commentary has been generated yet.
func (p *Publisher) Publish(ctx context.Context, result *contracts.ScanResult, analysis string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}

	payload := PagesPayload{
		GeneratedAt: time.Now().UTC(),
		Scan:        result,
		Analysis:    analysis,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode published snapshot: %w", err)
	}

	// Write-then-rename so a dashboard reader never sees a torn file
	path := filepath.Join(p.dir, latestFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write published snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace published snapshot: %w", err)
	}

	p.log.WithFields(map[string]interface{}{
		"record_id": result.RecordID(),
		"path":      path,
	}).Info("Published latest scan snapshot")
	return nil
}

// Latest reads back the currently published snapshot, if any
func (p *Publisher) Latest() (*PagesPayload, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, latestFile))
	if err != nil {
		return nil, err
	}
	var payload PagesPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode published snapshot: %w", err)
	}
	return &payload, nil
}
