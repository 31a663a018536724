package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove scan artifacts past the retention horizon",
	Long: `Deletes JSON/CSV scan records and analysis reports older than
OUTPUT_RETENTION_DAYS (default 7). The published docs folder is left
untouched.

Example:
  go run ./cmd/scanner cleanup`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	removed, err := d.cleaner.Run(context.Background(), time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d expired artifact(s)\n", removed)
	return nil
}
