package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dialectiq/dialectiq/internal/events"
	"github.com/dialectiq/dialectiq/internal/scheduler"
)

// Built-in job names and schedules. The learning scheduler aggregates
// knowledge; the training scheduler improves agents. Both instances share
// scheduling logic but run independently.
const (
	jobAggregation = "cross_domain_aggregation"
	jobContinuous  = "continuous_learning"
	jobRetraining  = "agent_retraining"
	jobPerformance = "performance_measurement"
	cronDaily0200  = "0 2 * * *"
	cronSunday0300 = "0 3 * * 0"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the autonomous pipeline schedulers until interrupted",
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

		color.Cyan("dialectiq %s serving", version)
		printJobStates(learning)
		printJobStates(training)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		color.Yellow("shutting down")
		return nil
	},
}

// buildSchedulers creates the two scheduler instances with the built-in
// jobs, honoring the config enable flags. Callers own Stop.
func buildSchedulers(rt *runtime, clock scheduler.Clock) (learning, training *scheduler.Scheduler, err error) {
	learning = scheduler.New(clock, rt.cfg.Scheduler.RetryDelay)
	training = scheduler.New(clock, rt.cfg.Scheduler.RetryDelay)

	if rt.cfg.Scheduler.LearningEnabled {
		if err := registerLearningJobs(rt, learning); err != nil {
			return nil, nil, err
		}
	}
	if rt.cfg.Scheduler.TrainingEnabled {
		if err := registerTrainingJobs(rt, training); err != nil {
			return nil, nil, err
		}
	}
	return learning, training, nil
}

func registerLearningJobs(rt *runtime, s *scheduler.Scheduler) error {
	if err := s.Register(jobAggregation, cronDaily0200, func(ctx context.Context) error {
		domains, err := rt.knowledge.Domains()
		if err != nil {
			return err
		}
		_, err = rt.aggregator.AggregateAcrossDomains(ctx, domains)
		publishJobRun(rt, jobAggregation, err)
		return err
	}); err != nil {
		return err
	}
	return s.Register(jobContinuous, cronSunday0300, func(ctx context.Context) error {
		domains, err := rt.knowledge.Domains()
		if err != nil {
			return err
		}
		_, err = rt.aggregator.RunContinuousLearning(ctx, domains)
		publishJobRun(rt, jobContinuous, err)
		return err
	})
}

func registerTrainingJobs(rt *runtime, s *scheduler.Scheduler) error {
	if err := s.Register(jobRetraining, cronDaily0200, func(ctx context.Context) error {
		_, err := rt.trainer.RetrainAgents(ctx)
		publishJobRun(rt, jobRetraining, err)
		return err
	}); err != nil {
		return err
	}
	return s.Register(jobPerformance, cronSunday0300, func(ctx context.Context) error {
		_, err := rt.trainer.MeasurePerformance(ctx)
		publishJobRun(rt, jobPerformance, err)
		return err
	})
}

func publishJobRun(rt *runtime, name string, runErr error) {
	payload := map[string]any{"job": name, "ok": runErr == nil}
	if runErr != nil {
		payload["error"] = runErr.Error()
	}
	rt.publisher.Publish(context.Background(), events.TypeJobRun, payload)
}
