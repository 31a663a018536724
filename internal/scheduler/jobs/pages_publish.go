package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/report"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// PagesPublishJob periodically rewrites the docs snapshot from the
// stored history. It repairs the published file after a deploy wiped
// the docs folder or a publish failed mid-scan.
type PagesPublishJob struct {
	store     contracts.ScanStore
	publisher *report.Publisher
	logger    *logger.Logger
}

// NewPagesPublishJob creates a new publish job
func NewPagesPublishJob(store contracts.ScanStore, publisher *report.Publisher, log *logger.Logger) *PagesPublishJob {
	return &PagesPublishJob{
		store:     store,
		publisher: publisher,
		logger:    log,
	}
}

// Name returns the job name
func (j *PagesPublishJob) Name() string {
	return "pages_publish"
}

// Schedule returns the cron schedule (hourly)
func (j *PagesPublishJob) Schedule() string {
	return "0 5 * * * *"
}

// Run republishes the latest stored scan, keeping any commentary
func (j *PagesPublishJob) Run(ctx context.Context) error {
	result, err := j.store.Latest(ctx)
	if errors.Is(err, report.ErrNoScans) {
		j.logger.Debug("No scans recorded yet, nothing to publish")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load latest scan: %w", err)
	}

	analysis := ""
	if prev, err := j.publisher.Latest(); err == nil {
		analysis = prev.Analysis
	}

	if err := j.publisher.Publish(ctx, result, analysis); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}
