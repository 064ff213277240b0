package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

type Config struct {
	Enabled              bool
	EnrollmentExpiryCron string
	PodcastScheduleCron  string
}

func (c Config) withDefaults() Config {
	if c.EnrollmentExpiryCron == "" {
		c.EnrollmentExpiryCron = "@every 15m"
	}
	if c.PodcastScheduleCron == "" {
		c.PodcastScheduleCron = "@every 1m"
	}
	return c
}

// EnrollmentExpirer is the part of the enrollment service the scheduler drives.
type EnrollmentExpirer interface {
	ExpireDue(dbc dbctx.Context, now time.Time) (int64, error)
}

type PodcastPublisher interface {
	PublishDue(dbc dbctx.Context, now time.Time) (int, error)
}

// Scheduler runs the periodic maintenance sweeps. A failed run is logged and
// picked up again on the next tick.
type Scheduler struct {
	log         *logger.Logger
	cron        *cron.Cron
	enrollments EnrollmentExpirer
	podcasts    PodcastPublisher
	now         func() time.Time
	runTimeout  time.Duration
}

func New(baseLog *logger.Logger, cfg Config, enrollments EnrollmentExpirer, podcasts PodcastPublisher) (*Scheduler, error) {
	cfg = cfg.withDefaults()
	log := baseLog.With("component", "Scheduler")
	cl := cronLogger{log: log}
	// A sweep still running when its next tick fires is skipped, not stacked.
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	s := &Scheduler{
		log:         log,
		cron:        c,
		enrollments: enrollments,
		podcasts:    podcasts,
		now:         time.Now,
		runTimeout:  2 * time.Minute,
	}
	if enrollments != nil {
		if _, err := s.cron.AddFunc(cfg.EnrollmentExpiryCron, func() { s.RunEnrollmentExpiry(context.Background()) }); err != nil {
			return nil, fmt.Errorf("schedule enrollment expiry %q: %w", cfg.EnrollmentExpiryCron, err)
		}
	}
	if podcasts != nil {
		if _, err := s.cron.AddFunc(cfg.PodcastScheduleCron, func() { s.RunPodcastPublishing(context.Background()) }); err != nil {
			return nil, fmt.Errorf("schedule podcast publishing %q: %w", cfg.PodcastScheduleCron, err)
		}
	}
	return s, nil
}

// cronLogger adapts the app logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "entries", len(s.cron.Entries()))
}

// Stop halts the cron loop. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) RunEnrollmentExpiry(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()
	n, err := s.enrollments.ExpireDue(dbctx.Context{Ctx: ctx}, s.now())
	if err != nil {
		s.log.Error("enrollment expiry run failed", "error", err)
		return 0
	}
	if n > 0 {
		s.log.Info("enrollments expired", "count", n)
	}
	return n
}

func (s *Scheduler) RunPodcastPublishing(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()
	n, err := s.podcasts.PublishDue(dbctx.Context{Ctx: ctx}, s.now())
	if err != nil {
		s.log.Error("scheduled podcast run failed", "error", err, "published", n)
		return n
	}
	if n > 0 {
		s.log.Info("scheduled podcasts published", "count", n)
	}
	return n
}
