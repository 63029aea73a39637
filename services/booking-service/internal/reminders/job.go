// Package reminders runs the day-before reminder sweep on a cron schedule.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Sender interface {
	SendReminders(ctx context.Context) (int, error)
}

type Config struct {
	// Spec is a standard five field cron expression or a descriptor such
	// as "@hourly" or "@every 15m".
	Spec     string
	Timeout  time.Duration
	Location *time.Location
}

type Job struct {
	sender  Sender
	logger  *slog.Logger
	sched   cron.Schedule
	spec    string
	timeout time.Duration
	loc     *time.Location
}

func New(sender Sender, logger *slog.Logger, cfg Config) (*Job, error) {
	if cfg.Spec == "" {
		cfg.Spec = "@every 15m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	sched, err := cron.ParseStandard(cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("parse reminder schedule %q: %w", cfg.Spec, err)
	}
	return &Job{
		sender:  sender,
		logger:  logger,
		sched:   sched,
		spec:    cfg.Spec,
		timeout: cfg.Timeout,
		loc:     cfg.Location,
	}, nil
}

// Run blocks until ctx is done, sweeping on every tick of the schedule.
// Overlapping runs are skipped.
func (j *Job) Run(ctx context.Context) {
	logger := cronLogger{logger: j.logger}
	c := cron.New(
		cron.WithLocation(j.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(j.sched, cron.FuncJob(func() { j.RunOnce(ctx) }))
	c.Start()
	j.logger.Info("reminder job started", "schedule", j.spec)

	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info("reminder job stopped")
}

// RunOnce performs a single sweep and returns how many reminders were sent.
func (j *Job) RunOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	sent, err := j.sender.SendReminders(runCtx)
	if err != nil {
		j.logger.Error("reminder sweep failed", "err", err, "sent", sent)
		return sent
	}
	if sent > 0 {
		j.logger.Info("reminders sent", "count", sent)
	}
	return sent
}

// Next reports when the schedule fires after t.
func (j *Job) Next(t time.Time) time.Time {
	return j.sched.Next(t.In(j.loc))
}

// cronLogger routes cron's own logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"err", err}, keysAndValues...)...)
}
