package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}

// Scheduled is a started cron schedule bound to a context.
type Scheduled struct {
	*cron.Cron
	done chan struct{}
}

// Wait blocks until the schedule's context is cancelled and any running job
// has returned.
func (s *Scheduled) Wait() {
	<-s.done
}

// Schedule runs job on spec (standard five-field cron or a descriptor such as
// "@every 5m") in loc until ctx is cancelled. Overlapping runs are skipped.
// The returned schedule has already been started.
func Schedule(ctx context.Context, spec string, loc *time.Location, logger *slog.Logger, job func(context.Context)) (*Scheduled, error) {
	if loc == nil {
		loc = time.Local
	}
	clog := cronLogger{logger: logger}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return nil, fmt.Errorf("add cron job %q: %w", spec, err)
	}
	c.Start()

	s := &Scheduled{Cron: c, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		<-ctx.Done()
		<-c.Stop().Done()
		logger.Info("watch scheduler stopped")
	}()

	return s, nil
}
