package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sepa/internal/scheduler"
	"github.com/wonny/sepa/internal/scheduler/jobs"
	"github.com/wonny/sepa/internal/watchlist"
)

// marketTimezone is the exchange clock the cron schedules run on
const marketTimezone = "America/New_York"

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/sepa scheduler start --watchlist watchlist.txt
  go run ./cmd/sepa scheduler list
  go run ./cmd/sepa scheduler run sepa_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- sepa_scan: SCAN_SCHEDULE (기본 평일 16:30 ET, 워치리스트 평가 + 저장)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var (
	schedulerWatchlist string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerWatchlist, "watchlist", "", "워치리스트 파일 (default: SCAN_WATCHLIST)")
}

// newScheduler wires the scheduler and registers every job
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	loc, err := time.LoadLocation(marketTimezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	sched := scheduler.New(a.log, loc)

	scanJob := jobs.NewScanJob(a.runner, a.repo, func() ([]string, error) {
		return watchlist.Resolve(schedulerWatchlist, a.cfg.Scan.Watchlist)
	}, a.cfg.Scan.Schedule, a.log)

	if err := sched.AddJob(scanJob); err != nil {
		return nil, fmt.Errorf("add job %s: %w", scanJob.Name(), err)
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== SEPA Scheduler ===")

	a, err := bootstrap(context.Background(), bootstrapOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	if a.repo == nil {
		a.log.Warn("DATABASE_URL not set: scan results will not be persisted")
	}

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	for _, name := range sched.GetAllJobs() {
		if next, err := sched.NextRun(name); err == nil {
			fmt.Printf("  %-12s next run %s\n", name, next.Format(time.RFC3339))
		}
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
	a, err := bootstrap(context.Background(), bootstrapOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n=== Registered Jobs ===")
	PrintSeparator(out)
	for name, stats := range sched.GetJobStats() {
		fmt.Fprintf(out, "  %-12s %s\n", name, stats.Schedule)
	}
	fmt.Fprintf(out, "\n  Timezone: %s\n", marketTimezone)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, bootstrapOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunJob(ctx, jobName)
	if err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}

	fmt.Printf("\n✅ Job %s completed in %.2fs\n", jobName, result.Duration.Seconds())
	return nil
}
