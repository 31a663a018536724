package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GeorgeHategan/sector-rotation/internal/analysis"
	"github.com/GeorgeHategan/sector-rotation/internal/report"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Generate AI commentary for the latest scan",
	Long: `Loads the most recent scan from history, sends it to OpenAI
for market commentary, saves the report and republishes the docs
snapshot with the analysis attached.

Requires DATABASE_URL and OPENAI_API_KEY.

Example:
  go run ./cmd/scanner analyze`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if d.store == nil {
		return fmt.Errorf("analyze needs DATABASE_URL for scan history")
	}

	client, err := analysis.NewClient(d.cfg, d.log)
	if err != nil {
		return err
	}

	ctx := context.Background()

	result, err := d.store.Latest(ctx)
	if errors.Is(err, report.ErrNoScans) {
		return fmt.Errorf("no scans recorded yet, run a scan first")
	}
	if err != nil {
		return fmt.Errorf("load latest scan: %w", err)
	}

	fmt.Printf("Analyzing scan %s...\n", result.RecordID())

	text, err := client.Analyze(ctx, result)
	if err != nil {
		return fmt.Errorf("generate commentary: %w", err)
	}

	writer := analysis.NewWriter(d.cfg, d.log)
	path, err := writer.Write(result, text)
	if err != nil {
		return fmt.Errorf("save commentary: %w", err)
	}

	if err := d.publisher.Publish(ctx, result, text); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	fmt.Printf("Report saved to %s\n\n", path)
	fmt.Println(text)
	return nil
}
