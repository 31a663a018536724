package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// Cleaner removes scan artifacts and analysis reports older than the
// retention horizon. The published docs folder is never touched.
type Cleaner struct {
	dirs      []string
	retention time.Duration
	log       *logger.Logger
}

// NewCleaner creates a cleaner over the historical and report folders
func NewCleaner(cfg *config.Config, log *logger.Logger) *Cleaner {
	return &Cleaner{
		dirs:      []string{cfg.Output.HistoricalDir, cfg.Output.ReportDir},
		retention: time.Duration(cfg.Output.RetentionDays) * 24 * time.Hour,
		log:       log.WithField("component", "cleaner"),
	}
}

// Run deletes expired files and returns how many were removed.
// Missing folders are skipped, subdirectories are left alone.
func (c *Cleaner) Run(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-c.retention)
	removed := 0

	for _, dir := range c.dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to list %s: %w", dir, err)
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return removed, err
			}
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				c.log.WithError(err).WithField("path", path).Warn("Failed to remove expired artifact")
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		c.log.WithField("removed", removed).Info("Expired artifacts removed")
	}
	return removed, nil
}
