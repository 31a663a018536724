package jobs

import (
	"context"
	"time"

	"github.com/GeorgeHategan/sector-rotation/internal/report"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// ArtifactCleanupJob removes scan artifacts past the retention horizon
type ArtifactCleanupJob struct {
	cleaner *report.Cleaner
	logger  *logger.Logger
}

// NewArtifactCleanupJob creates a new cleanup job
func NewArtifactCleanupJob(cleaner *report.Cleaner, log *logger.Logger) *ArtifactCleanupJob {
	return &ArtifactCleanupJob{
		cleaner: cleaner,
		logger:  log,
	}
}

// Name returns the job name
func (j *ArtifactCleanupJob) Name() string {
	return "artifact_cleanup"
}

// Schedule returns the cron schedule (daily at 2 AM)
func (j *ArtifactCleanupJob) Schedule() string {
	return "0 0 2 * * *"
}

// Run executes the cleanup
func (j *ArtifactCleanupJob) Run(ctx context.Context) error {
	removed, err := j.cleaner.Run(ctx, time.Now())
	if err != nil {
		return err
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Artifact cleanup completed")
	}
	return nil
}
