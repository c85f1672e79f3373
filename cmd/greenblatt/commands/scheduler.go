package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/greenblatt/internal/scheduler"
	"github.com/wonny/greenblatt/internal/scheduler/jobs"
	"github.com/wonny/greenblatt/internal/universe"
	"github.com/wonny/greenblatt/pkg/database"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage background jobs",
	Long: `Start the scheduler or run its jobs by hand.

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run one job immediately

Example:
  go run ./cmd/greenblatt scheduler start
  go run ./cmd/greenblatt scheduler run universe_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Start the scheduler and run every registered job on its schedule.

Registered jobs:
- universe_refresh: REFRESH_SCHEDULE (default 06:00 daily)
- cache_cleanup: every 10 minutes (memory cache backend only)

Stop with Ctrl+C.`,
		RunE: runScheduler,
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
		RunE:  runJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the jobs; the returned cleanup releases connections
func initScheduler(daemon bool) (*scheduler.Scheduler, func(), error) {
	cfg, err := loadConfig(daemon)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	cleanup := func() {
		db.Close()
		a.Close()
	}

	sched := scheduler.New(a.log)

	companies := universe.NewService(universe.NewRepository(db.Pool), a.analysis, a.ranker, a.log)
	if err := sched.AddJob(jobs.NewRefreshJob(companies, cfg.Scheduler.RefreshSchedule, a.log)); err != nil {
		cleanup()
		return nil, nil, err
	}

	if a.memory != nil {
		if err := sched.AddJob(jobs.NewCacheCleanupJob(a.memory, a.log)); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	return sched, cleanup, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Greenblatt Scheduler ===")

	sched, cleanup, err := initScheduler(true)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler(false)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	stats := sched.Stats()
	widths := []int{20, 20}
	PrintTableHeader([]string{"Job", "Schedule"}, widths)
	for _, name := range sched.Jobs() {
		PrintTableRow([]string{name, stats[name].Schedule}, widths)
	}
	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler(false)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	result, err := sched.WithRetry(0, 0).RunNow(args[0])
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if jsonOutput {
		return PrintJSON(result)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %s: %s", result.JobName, result.Duration, result.Error))
		return fmt.Errorf("job %s failed", result.JobName)
	}
	PrintSuccess(fmt.Sprintf("%s completed in %s (attempts: %s)", result.JobName, result.Duration, strconv.Itoa(result.Attempts)))
	return nil
}
