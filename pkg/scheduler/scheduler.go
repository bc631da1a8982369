package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/umputun/lifestream/pkg/aggregate"
	"github.com/umputun/lifestream/pkg/build"
)

//go:generate moq -out mocks/builder.go -pkg mocks -skip-ensure -fmt goimports . Builder

// Scheduler rebuilds the page periodically and keeps the latest build report
type Scheduler struct {
	builder  Builder
	interval time.Duration
	retry    Retry

	wg     sync.WaitGroup
	cancel context.CancelFunc

	buildMu sync.Mutex // one build at a time
	mu      sync.RWMutex
	latest  *build.Report
	lastErr error
}

// Builder fetches all sources and publishes the page made from fetched snapshot
type Builder interface {
	Fetch(ctx context.Context) aggregate.Snapshot
	Publish(snap aggregate.Snapshot) (*build.Report, error)
}

// Retry is the backoff policy for failed publishing. A single attempt by default,
// failed build waits for the next tick. Sources are fetched once per build and
// never retried.
type Retry struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Params holds scheduler dependencies and settings
type Params struct {
	Builder  Builder
	Interval time.Duration // zero disables periodic rebuilds, only the initial one is made
	Retry    Retry
}

// NewScheduler creates a new scheduler instance
func NewScheduler(p Params) *Scheduler {
	if p.Retry.Attempts <= 0 {
		p.Retry.Attempts = 1
	}
	if p.Retry.InitialDelay == 0 {
		p.Retry.InitialDelay = time.Second
	}
	if p.Retry.MaxDelay == 0 {
		p.Retry.MaxDelay = 30 * time.Second
	}
	return &Scheduler{builder: p.Builder, interval: p.Interval, retry: p.Retry}
}

// Start makes the first build and begins periodic rebuilds in background
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.rebuildWorker(ctx)

	lgr.Printf("[INFO] scheduler started with rebuild interval %v", s.interval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// Latest returns the last successful build report, nil before the first one
func (s *Scheduler) Latest() *build.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// LastError returns the error of the last build attempt, nil if it succeeded
func (s *Scheduler) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// RebuildNow runs a build immediately, without retries
func (s *Scheduler) RebuildNow(ctx context.Context) error {
	lgr.Printf("[INFO] triggered immediate rebuild")
	return s.rebuild(ctx, 1)
}

// rebuildWorker builds on start and then on every tick
func (s *Scheduler) rebuildWorker(ctx context.Context) {
	defer s.wg.Done()

	// run immediately on start
	s.rebuildWithRetry(ctx)
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.rebuildWithRetry(ctx)
		}
	}
}

// rebuildWithRetry retries failed publishing with backoff if more than one
// attempt is allowed. Source failures don't fail a build, only render and write
// problems get here.
func (s *Scheduler) rebuildWithRetry(ctx context.Context) {
	if err := s.rebuild(ctx, s.retry.Attempts); err != nil {
		lgr.Printf("[ERROR] rebuild failed after %d attempts: %v", s.retry.Attempts, err)
	}
}

// rebuild fetches once and publishes the snapshot, up to attempts times
func (s *Scheduler) rebuild(ctx context.Context, attempts int) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	snap := s.builder.Fetch(ctx)
	retrier := repeater.NewBackoff(attempts, s.retry.InitialDelay, repeater.WithMaxDelay(s.retry.MaxDelay))
	return retrier.Do(ctx, func() error { return s.publish(snap) })
}

func (s *Scheduler) publish(snap aggregate.Snapshot) error {
	rep, err := s.builder.Publish(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		lgr.Printf("[WARN] publish failed: %v", err)
		return fmt.Errorf("rebuild: %w", err)
	}
	s.latest = rep
	return nil
}
