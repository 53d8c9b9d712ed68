package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dialectiq/dialectiq/internal/scheduler"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and run the built-in scheduled jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in jobs with their schedules and next runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		learning, training, err := buildSchedulers(rt, scheduler.NewRealClock())
		if err != nil {
			return err
		}
		defer learning.Stop()
		defer training.Stop()

		color.Cyan("learning scheduler:")
		printJobStates(learning)
		color.Cyan("training scheduler:")
		printJobStates(training)
		return nil
	},
}

var jobsTriggerCmd = &cobra.Command{
	Use:   "trigger <name>",
	Short: "Run one built-in job immediately and report the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		learning, training, err := buildSchedulers(rt, scheduler.NewRealClock())
		if err != nil {
			return err
		}
		defer learning.Stop()
		defer training.Stop()

		if err := triggerJob(cmd.Context(), args[0], learning, training); err != nil {
			return err
		}
		color.Green("job %s completed", args[0])
		return nil
	},
}

// triggerJob runs the named job on whichever scheduler owns it.
func triggerJob(ctx context.Context, name string, schedulers ...*scheduler.Scheduler) error {
	for _, s := range schedulers {
		err := s.Trigger(ctx, name)
		if !errors.Is(err, scheduler.ErrUnknownJob) {
			return err
		}
	}
	return fmt.Errorf("%w: %q", scheduler.ErrUnknownJob, name)
}

func printJobStates(s *scheduler.Scheduler) {
	jobs := s.ListJobs()
	if len(jobs) == 0 {
		fmt.Println("  (disabled)")
		return
	}
	for _, j := range jobs {
		fmt.Printf("  %-28s %-12s next %s\n", j.Name, j.Expr, j.NextRun.Format("2006-01-02 15:04"))
	}
}

func init() {
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsTriggerCmd)
}
