package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Job statuses.
const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusFailed  = "failed"
)

// ErrUnknownJob is returned when a job name does not resolve.
var ErrUnknownJob = errors.New("unknown job")

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// JobState is a snapshot of one job's scheduling state.
type JobState struct {
	Name         string    `json:"name"`
	Expr         string    `json:"expr"`
	Enabled      bool      `json:"enabled"`
	LastRun      time.Time `json:"last_run"`
	NextRun      time.Time `json:"next_run"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

type job struct {
	state JobState
	cron  *CronExpr
	fn    JobFunc
	timer Timer
}

// Scheduler owns a map from job name to job state plus an injected clock.
// Job state is process-lifetime only; jobs are re-registered on restart.
// Each job carries a single pending timer. A failed run is re-armed after
// a fixed retry delay rather than an exponential backoff.
type Scheduler struct {
	clock      Clock
	retryDelay time.Duration
	mu         sync.Mutex
	jobs       map[string]*job
}

// New creates a Scheduler with the given clock and failure-retry delay.
func New(clock Clock, retryDelay time.Duration) *Scheduler {
	if clock == nil {
		clock = NewRealClock()
	}
	if retryDelay <= 0 {
		retryDelay = time.Hour
	}
	return &Scheduler{
		clock:      clock,
		retryDelay: retryDelay,
		jobs:       make(map[string]*job),
	}
}

// Register parses the cron expression, adds the job enabled, and arms its
// timer for the next run. Unsupported expressions fail here, at schedule
// time.
func (s *Scheduler) Register(name, expr string, fn JobFunc) error {
	cron, err := ParseCron(expr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j := &job{
		state: JobState{
			Name:    name,
			Expr:    expr,
			Enabled: true,
			Status:  StatusIdle,
		},
		cron: cron,
		fn:   fn,
	}
	s.jobs[name] = j
	s.armLocked(j, j.cron.Next(s.clock.Now()))
	slog.Info("job registered", "name", name, "expr", expr, "next_run", j.state.NextRun)
	return nil
}

// ListJobs returns a snapshot of all job states.
func (s *Scheduler) ListJobs() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobState, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.state)
	}
	return out
}

// GetJob returns a snapshot of one job's state.
func (s *Scheduler) GetJob(name string) (JobState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		return JobState{}, ErrUnknownJob
	}
	return j.state, nil
}

// SetEnabled toggles a job. Disabling cancels the pending timer and keeps
// status and history as-is; enabling re-arms from the schedule.
func (s *Scheduler) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		return ErrUnknownJob
	}
	if j.state.Enabled == enabled {
		return nil
	}
	j.state.Enabled = enabled
	if !enabled {
		if j.timer != nil {
			j.timer.Stop()
			j.timer = nil
		}
		slog.Info("job disabled", "name", name)
		return nil
	}
	s.armLocked(j, j.cron.Next(s.clock.Now()))
	slog.Info("job enabled", "name", name, "next_run", j.state.NextRun)
	return nil
}

// Trigger runs the job immediately and synchronously, independent of the
// timer. Status and lastRun are updated the same way as a timed run; the
// pending timer is not disturbed. The job body's error is returned to the
// invoker.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownJob
	}
	j.state.Status = StatusRunning
	fn := j.fn
	s.mu.Unlock()

	err := fn(ctx)

	s.mu.Lock()
	j.state.LastRun = s.clock.Now()
	if err != nil {
		j.state.Status = StatusFailed
		j.state.ErrorMessage = err.Error()
	} else {
		j.state.Status = StatusIdle
		j.state.ErrorMessage = ""
	}
	s.mu.Unlock()
	return err
}

// Stop cancels all pending timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.timer != nil {
			j.timer.Stop()
			j.timer = nil
		}
	}
}

// armLocked sets the single pending timer for a job. Caller holds s.mu.
func (s *Scheduler) armLocked(j *job, at time.Time) {
	if j.timer != nil {
		j.timer.Stop()
	}
	j.state.NextRun = at
	name := j.state.Name
	j.timer = s.clock.AfterFunc(at.Sub(s.clock.Now()), func() {
		s.fire(name)
	})
}

// fire runs a job from its timer, then re-arms: on success from the cron
// schedule, on failure after the fixed retry delay.
func (s *Scheduler) fire(name string) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	if !ok || !j.state.Enabled {
		s.mu.Unlock()
		return
	}
	j.state.Status = StatusRunning
	fn := j.fn
	s.mu.Unlock()

	slog.Info("job firing", "name", name)
	err := fn(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	j.state.LastRun = s.clock.Now()
	if err != nil {
		j.state.Status = StatusFailed
		j.state.ErrorMessage = err.Error()
		slog.Error("job failed", "name", name, "error", err)
		if j.state.Enabled {
			s.armLocked(j, s.clock.Now().Add(s.retryDelay))
		}
		return
	}
	j.state.Status = StatusIdle
	j.state.ErrorMessage = ""
	slog.Info("job completed", "name", name)
	if j.state.Enabled {
		s.armLocked(j, j.cron.Next(s.clock.Now()))
	}
}
