package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ideas/internal/profile"
	"github.com/wonny/aegis-ideas/internal/scheduler"
	"github.com/wonny/aegis-ideas/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `프로필 기반 정기 아이디어 생성을 관리합니다.

각 프로필(YAML)의 meta.schedule 에 따라 generate:<profile_id> 작업이 등록되고,
결과는 result:<requestId> 와 profile:<profile_id>:latest 로 캐싱됩니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업과 다음 실행 시각
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/ideagen scheduler start --profiles config/profiles/growth_weekly.yaml
  go run ./cmd/ideagen scheduler run generate:growth_weekly`,
}

var (
	schedulerProfiles []string

	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
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

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringSliceVar(&schedulerProfiles, "profiles", nil, "프로필 YAML 경로 (default: SCHEDULER_PROFILES)")
}

// buildScheduler registers one generation job per profile plus the cache cleanup
func buildScheduler(a *app, paths []string) (*scheduler.Scheduler, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no profiles configured (set SCHEDULER_PROFILES or --profiles)")
	}

	profiles, err := profile.LoadAll(paths)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(a.logger, scheduler.WithRetries(1, 5*time.Minute))

	for _, p := range profiles {
		if err := sched.AddJob(jobs.NewGenerationJob(p, a.orchestrator, a.results, a.logger)); err != nil {
			return nil, err
		}
	}
	if err := sched.AddJob(jobs.NewCacheCleanupJob(a.results, a.logger)); err != nil {
		return nil, err
	}

	return sched, nil
}

func profilePaths(a *app) []string {
	if len(schedulerProfiles) > 0 {
		return schedulerProfiles
	}
	return a.cfg.Scheduler.Profiles
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis Ideas Scheduler ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a, profilePaths(a))
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a, profilePaths(a))
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a, profilePaths(a))
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	defer sched.Stop()

	fmt.Printf("Running job: %s\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		return err
	}
	sched.Wait()

	history, err := sched.GetJobHistory(jobName)
	if err != nil {
		return err
	}
	if len(history.Results) == 0 {
		return fmt.Errorf("job %s produced no result", jobName)
	}

	last := history.Results[len(history.Results)-1]
	if !last.Success {
		PrintError(fmt.Sprintf("%s failed after %s: %s", jobName, last.Duration.Round(time.Millisecond), last.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, last.Duration.Round(time.Millisecond)))
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	fmt.Println("\nRegistered jobs:")
	widths := []int{32, 24, 25}
	PrintTableHeader([]string{"JOB", "SCHEDULE", "NEXT RUN"}, widths)

	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		next := "-"
		if t, err := sched.NextRun(name); err == nil && !t.IsZero() {
			next = t.Format(time.RFC3339)
		}
		PrintTableRow([]string{name, stats[name].Schedule, next}, widths)
	}
}
