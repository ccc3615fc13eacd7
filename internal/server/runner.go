// Package server schedules reconciliation passes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/gamarr/internal/importer"
)

// ErrPassRunning indicates another pass holds the in-process or file lock.
var ErrPassRunning = errors.New("reconciliation pass already running")

// PassRunner runs one reconciliation pass.
type PassRunner interface {
	RunPass(ctx context.Context) (*importer.PassResult, error)
}

// Clock abstracts time for the schedule loop.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Config for the scheduler.
type Config struct {
	Interval  time.Duration
	OnStartup bool
	LockPath  string // Lock file shared with other gamarr processes; empty disables
}

// Runner runs passes on an interval and on request. At most one pass runs at
// a time, both within the process and across processes sharing LockPath.
type Runner struct {
	pass     PassRunner
	config   Config
	clock    Clock
	mu       sync.Mutex
	triggers chan struct{}
	skipped  atomic.Int64
	logger   *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(pass PassRunner, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		pass:     pass,
		config:   cfg,
		clock:    realClock{},
		triggers: make(chan struct{}, 1),
		logger:   logger.With("component", "scheduler"),
	}
}

// RunOnce runs a single pass unless one is already running, in which case
// it returns ErrPassRunning without waiting.
func (r *Runner) RunOnce(ctx context.Context) (*importer.PassResult, error) {
	if !r.mu.TryLock() {
		return nil, ErrPassRunning
	}
	defer r.mu.Unlock()

	if r.config.LockPath != "" {
		lock := flock.New(r.config.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", r.config.LockPath, err)
		}
		if !locked {
			return nil, ErrPassRunning
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				r.logger.Warn("failed to release pass lock", "path", r.config.LockPath, "error", err)
			}
		}()
	}

	return r.pass.RunPass(ctx)
}

// Trigger requests an immediate pass. It never blocks; a pending request
// absorbs further ones.
func (r *Runner) Trigger() {
	select {
	case r.triggers <- struct{}{}:
	default:
	}
}

// Skipped returns how many requested passes were dropped because another
// pass was running.
func (r *Runner) Skipped() int64 {
	return r.skipped.Load()
}

// Run schedules passes until ctx is cancelled. The next interval starts when
// a pass finishes, so scheduled passes never queue up; triggered passes that
// collide with a running one are skipped.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	r.logger.Info("scheduler started", "interval", r.config.Interval, "on_startup", r.config.OnStartup)

	g.Go(func() error {
		if r.config.OnStartup {
			r.runScheduled(ctx)
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(r.config.Interval):
				r.runScheduled(ctx)
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.triggers:
				r.logger.Info("pass requested")
				r.runScheduled(ctx)
			}
		}
	})

	err := g.Wait()
	r.logger.Info("scheduler stopped", "skipped", r.Skipped())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Runner) runScheduled(ctx context.Context) {
	start := r.clock.Now()
	res, err := r.RunOnce(ctx)
	switch {
	case errors.Is(err, ErrPassRunning):
		r.skipped.Add(1)
		r.logger.Info("another pass is running, skipping")
	case errors.Is(err, context.Canceled):
		r.logger.Info("pass interrupted by shutdown")
	case err != nil:
		r.logger.Error("pass failed", "error", err)
	default:
		for _, e := range res.Errors {
			r.logger.Warn("pass error", "pass_id", res.PassID, "error", e)
		}
		r.logger.Info("pass finished", "pass_id", res.PassID, "duration", r.clock.Now().Sub(start))
	}
}
