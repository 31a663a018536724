package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Sector rotation market scanner",
	Long: `Sector Rotation Scanner CLI

Fetches daily price series for the sector ETF universe, scores
multi-window momentum, classifies the risk environment and emits
JSON/CSV scan records.

Usage:
  go run ./cmd/scanner [command]

Examples:
  go run ./cmd/scanner scan --force
  go run ./cmd/scanner api
  go run ./cmd/scanner scheduler start
  go run ./cmd/scanner start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
