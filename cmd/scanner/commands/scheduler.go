package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GeorgeHategan/sector-rotation/internal/scheduler"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage scheduled jobs",
	Long: `Starts the scheduler daemon or inspects its jobs.

Registered jobs:
- sector_scan: every 30 minutes during the 09:30-16:00 ET session
- ai_analysis: weekdays at 16:15 ET (needs OPENAI_API_KEY)
- pages_publish: hourly (needs DATABASE_URL)
- artifact_cleanup: daily at 2 AM

Subcommands:
  start   - start the scheduler
  list    - list registered jobs
  run     - run one job immediately
  status  - show job execution stats

Example:
  go run ./cmd/scanner scheduler start
  go run ./cmd/scanner scheduler run sector_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runSchedulerDaemon,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job execution stats",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func initScheduler() (*scheduler.Scheduler, *deps, error) {
	d, err := initDeps()
	if err != nil {
		return nil, nil, err
	}

	runner, err := d.newRunner(nil)
	if err != nil {
		d.Close()
		return nil, nil, err
	}

	sched, err := d.newScheduler(runner)
	if err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("init scheduler: %w", err)
	}

	return sched, d, nil
}

func runSchedulerDaemon(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return err
	}
	defer d.Close()

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, d, err := initScheduler()
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Printf("Running job: %s\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job started (running in background)")
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return err
	}
	defer d.Close()

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for jobName, stat := range stats {
		fmt.Printf("%s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)
		fmt.Printf("   Skipped: %d\n", stat.SkippedCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}
		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}
