package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GeorgeHategan/sector-rotation/internal/report"
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Republish the latest scan to the docs folder",
	Long: `Rewrites docs/latest_data.json from the most recent scan in
history, keeping any previously published commentary.

Example:
  go run ./cmd/scanner publish`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if d.store == nil {
		return fmt.Errorf("publish needs DATABASE_URL for scan history")
	}

	ctx := context.Background()

	result, err := d.store.Latest(ctx)
	if errors.Is(err, report.ErrNoScans) {
		return fmt.Errorf("no scans recorded yet, run a scan first")
	}
	if err != nil {
		return fmt.Errorf("load latest scan: %w", err)
	}

	analysis := ""
	if prev, err := d.publisher.Latest(); err == nil {
		analysis = prev.Analysis
	}

	if err := d.publisher.Publish(ctx, result, analysis); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	fmt.Printf("Published %s\n", result.RecordID())
	return nil
}
