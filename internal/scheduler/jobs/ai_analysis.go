package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/GeorgeHategan/sector-rotation/internal/analysis"
	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/report"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// AIAnalysisJob generates the daily market commentary for the most
// recent scan after the close and republishes the snapshot with it.
type AIAnalysisJob struct {
	store     contracts.ScanStore
	client    *analysis.Client
	writer    *analysis.Writer
	publisher *report.Publisher
	logger    *logger.Logger
}

// NewAIAnalysisJob creates a new analysis job
func NewAIAnalysisJob(
	store contracts.ScanStore,
	client *analysis.Client,
	writer *analysis.Writer,
	publisher *report.Publisher,
	log *logger.Logger,
) *AIAnalysisJob {
	return &AIAnalysisJob{
		store:     store,
		client:    client,
		writer:    writer,
		publisher: publisher,
		logger:    log,
	}
}

// Name returns the job name
func (j *AIAnalysisJob) Name() string {
	return "ai_analysis"
}

// Schedule returns the cron schedule (weekdays at 16:15 ET, after the
// last session scan has landed)
func (j *AIAnalysisJob) Schedule() string {
	return "CRON_TZ=America/New_York 0 15 16 * * MON-FRI"
}

// Run generates and saves commentary for the latest scan
func (j *AIAnalysisJob) Run(ctx context.Context) error {
	result, err := j.store.Latest(ctx)
	if errors.Is(err, report.ErrNoScans) {
		j.logger.Info("No scans recorded yet, skipping commentary")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load latest scan: %w", err)
	}

	text, err := j.client.Analyze(ctx, result)
	if err != nil {
		return fmt.Errorf("generate commentary: %w", err)
	}

	if _, err := j.writer.Write(result, text); err != nil {
		return fmt.Errorf("save commentary: %w", err)
	}

	if err := j.publisher.Publish(ctx, result, text); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}
