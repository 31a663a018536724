package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one sector rotation scan",
	Long: `Runs a full scan: fetches daily series for every configured
sector ETF, scores momentum, ranks the sectors and writes the
JSON/CSV record.

Outside the 09:30-16:00 ET session the scan is skipped unless
--force is given.

Example:
  go run ./cmd/scanner scan
  go run ./cmd/scanner scan --force`,
	RunE: runScan,
}

var scanForce bool

func init() {
	rootCmd.AddCommand(scanCmd)

	// Flags
	scanCmd.Flags().BoolVar(&scanForce, "force", false, "run even when the market is closed")
}

func runScan(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	runner, err := d.newRunner(nil)
	if err != nil {
		return err
	}

	result, err := runner.RunScan(context.Background(), scanForce)
	if errors.Is(err, scanner.ErrMarketClosed) {
		fmt.Println("Market is closed, scan skipped (use --force to override)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	// Refresh the published snapshot, keeping any existing commentary
	analysis := ""
	if prev, err := d.publisher.Latest(); err == nil {
		analysis = prev.Analysis
	}
	if err := d.publisher.Publish(context.Background(), result, analysis); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	printScanSummary(result)
	return nil
}

func printScanSummary(result *contracts.ScanResult) {
	fmt.Printf("\nScan %s\n", result.RecordID())
	fmt.Printf("Sentiment: %s\n", result.Sentiment)

	if result.Strongest != nil && result.Weakest != nil {
		fmt.Printf("Strongest: %s  Weakest: %s\n", *result.Strongest, *result.Weakest)
	}

	if len(result.Ranking) > 0 {
		fmt.Println("\nRanking:")
		for i, r := range result.Ranking {
			fmt.Printf("  %2d. %-5s %+.2f\n", i+1, r.Ticker, r.Score)
		}
	} else {
		fmt.Println("\nNot enough scored sectors for a ranking")
	}
}
