package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GeorgeHategan/sector-rotation/internal/api"
	"github.com/GeorgeHategan/sector-rotation/internal/api/handlers"
	"github.com/GeorgeHategan/sector-rotation/internal/api/ws"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the HTTP API server.

Endpoints:
  GET  /health            - Health check
  GET  /api/scans/latest  - Most recent scan
  GET  /api/scans         - Scan history (from/to query params)
  POST /api/scans         - Trigger a scan
  GET  /api/sectors       - Configured sector universe
  GET  /ws                - Realtime scan feed (WebSocket)

Example:
  go run ./cmd/scanner api
  go run ./cmd/scanner api --port 8091`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	// Override port if flag is set
	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	if d.store == nil {
		return fmt.Errorf("the API needs DATABASE_URL for scan history")
	}

	hub := ws.NewHub(d.log)
	runner, err := d.newRunner(hub)
	if err != nil {
		return err
	}

	scanHandler := handlers.NewScanHandler(d.store, runner, d.scanCfg, d.log)
	router := api.NewRouter(scanHandler, nil, hub, d.log)
	server := api.New(d.cfg, d.log, router)

	// Make sure the scan table exists before serving
	if err := d.store.EnsureSchema(context.Background()); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
