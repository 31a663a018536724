package jobs

import (
	"context"
	"fmt"

	"github.com/GeorgeHategan/sector-rotation/internal/report"
	"github.com/GeorgeHategan/sector-rotation/internal/scanner"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// SectorScanJob runs the rotation scan every half hour during the US
// trading session and refreshes the published snapshot.
type SectorScanJob struct {
	runner    *scanner.Runner
	publisher *report.Publisher
	logger    *logger.Logger
}

// NewSectorScanJob creates a new sector scan job
func NewSectorScanJob(runner *scanner.Runner, publisher *report.Publisher, log *logger.Logger) *SectorScanJob {
	return &SectorScanJob{
		runner:    runner,
		publisher: publisher,
		logger:    log,
	}
}

// Name returns the job name
func (j *SectorScanJob) Name() string {
	return "sector_scan"
}

// Schedule returns the cron schedule (every 30 minutes during the
// 09:30-16:00 ET session; the market gate filters the edges)
func (j *SectorScanJob) Schedule() string {
	return "CRON_TZ=America/New_York 0 0,30 9-16 * * MON-FRI"
}

// Run executes one scan
func (j *SectorScanJob) Run(ctx context.Context) error {
	result, err := j.runner.RunScan(ctx, false)
	if err != nil {
		return err
	}

	// Carry the last commentary forward so a fresh scan does not blank
	// the dashboard's analysis panel
	analysis := ""
	if prev, err := j.publisher.Latest(); err == nil {
		analysis = prev.Analysis
	}

	if err := j.publisher.Publish(ctx, result, analysis); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}
