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

// startCmd runs the API server and the scheduler in one process
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server and scheduler together",
	Long: `Runs the full service: the REST API, the WebSocket feed and
the job scheduler in a single process. Scheduled scans are pushed to
connected WebSocket clients as they complete.

Example:
  go run ./cmd/scanner start
  go run ./cmd/scanner start --port 8091`,
	RunE: runStart,
}

var startPort string

func init() {
	rootCmd.AddCommand(startCmd)

	// Flags
	startCmd.Flags().StringVar(&startPort, "port", "", "API server port (default from PORT)")
}

func runStart(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if startPort != "" {
		d.cfg.Port = startPort
	}

	if d.store == nil {
		return fmt.Errorf("the service needs DATABASE_URL for scan history")
	}
	if err := d.store.EnsureSchema(context.Background()); err != nil {
		return err
	}

	// Scheduled scans reach dashboards through the hub
	hub := ws.NewHub(d.log)
	runner, err := d.newRunner(hub)
	if err != nil {
		return err
	}

	sched, err := d.newScheduler(runner)
	if err != nil {
		return err
	}

	scanHandler := handlers.NewScanHandler(d.store, runner, d.scanCfg, d.log)
	jobHandler := handlers.NewJobHandler(sched, d.log)
	router := api.NewRouter(scanHandler, jobHandler, hub, d.log)
	server := api.New(d.cfg, d.log, router)

	sched.Start()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Println("Service started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		sched.Stop()
		return err
	case <-quit:
	}

	fmt.Println("\nShutting down...")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
