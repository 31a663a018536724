package main

import (
	"os"

	"github.com/GeorgeHategan/sector-rotation/cmd/scanner/commands"
)

// main is the entry point for the sector rotation CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
