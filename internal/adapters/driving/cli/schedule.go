package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scheduled re-indexing in the foreground",
	Long: `Runs the scheduler until interrupted. The corpus is re-ingested on the cron
expression in scheduler.corpus_reindex.schedule (nightly by default).

Long-running commands (serve, mcp serve, telegram, tui) also run the scheduler
in the background when scheduler.enabled is true.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

var scheduleHistory int

var scheduleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scheduled jobs and their recent runs",
	Args:  cobra.NoArgs,
	RunE:  runScheduleStatus,
}

func init() {
	scheduleStatusCmd.Flags().IntVarP(&scheduleHistory, "history", "n", 5, "number of recent runs to show per job")
	scheduleCmd.AddCommand(scheduleStatusCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	job := schedulerConfig.Job(domain.JobCorpusReindex)
	cmd.Printf("Scheduler running (corpus re-index: %q, enabled: %t). Press Ctrl+C to stop.\n",
		job.Schedule, job.Enabled)

	err := scheduler.Start(cmd.Context())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runScheduleStatus(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	jobs, err := scheduler.Jobs(cmd.Context())
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		cmd.Println("No jobs have been scheduled yet. Run 'ragdocs schedule' to start the scheduler.")
		return nil
	}

	for _, job := range jobs {
		state := "enabled"
		if !job.Enabled {
			state = "disabled"
		}
		cmd.Printf("%s (%s, %s)\n", job.Name, job.Schedule, state)
		cmd.Printf("  Next run:     %s\n", stamp(job.NextRun))
		cmd.Printf("  Last run:     %s\n", stamp(job.LastRun))
		cmd.Printf("  Last success: %s\n", stamp(job.LastSuccess))
		if job.LastError != "" {
			cmd.Printf("  Last error:   %s\n", job.LastError)
		}

		runs, err := scheduler.History(cmd.Context(), job.ID, scheduleHistory)
		if err != nil {
			return err
		}
		for _, r := range runs {
			outcome := "ok"
			if !r.Success {
				outcome = "FAIL " + r.Error
			}
			cmd.Printf("    %s  %8s  %d/%d passages  %s\n",
				stamp(r.StartedAt), r.Duration().Round(time.Second), r.Accepted, r.Passages, outcome)
		}
	}
	return nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// startBackgroundScheduler runs the scheduler alongside a long-running command
// when it is enabled. The returned func stops it.
func startBackgroundScheduler(ctx context.Context) func() {
	if scheduler == nil || !schedulerConfig.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
		<-done
	}
}
