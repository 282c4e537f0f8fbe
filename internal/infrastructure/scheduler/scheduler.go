package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/officelunch/attendance-api/internal/api/metrics"
	"github.com/officelunch/attendance-api/internal/core/ports"
)

const (
	// DefaultHeadcountSpec fires at the 09:30 cutoff on weekdays.
	DefaultHeadcountSpec = "30 9 * * 1-5"
	runTimeout           = 2 * time.Minute
)

// Scheduler triggers the headcount notifier on a cron schedule in the office
// time zone. A run still in progress makes the next tick skip.
type Scheduler struct {
	cron     *cron.Cron
	notifier ports.HeadcountNotifier
	log      zerolog.Logger
	now      func() time.Time
}

func New(spec string, loc *time.Location, notifier ports.HeadcountNotifier, log zerolog.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultHeadcountSpec
	}
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}

	if _, err := s.cron.AddFunc(spec, func() { s.RunHeadcount(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule headcount %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info().Time("next_run", e.Next).Msg("headcount scheduled")
	}
}

// Stop halts the schedule and waits for a running job, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stopped before headcount run finished")
	}
}

// RunHeadcount performs one notifier run and records its outcome.
func (s *Scheduler) RunHeadcount(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	start := time.Now()
	summary, err := s.notifier.Run(ctx, s.now())
	metrics.ObserveHeadcount(summary, err, time.Since(start))
	if err != nil {
		s.log.Error().Err(err).Msg("headcount run failed")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
