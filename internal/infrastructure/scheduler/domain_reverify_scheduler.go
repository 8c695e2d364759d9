// Package scheduler runs background maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	"go.uber.org/zap"
)

// DomainReverifier re-checks every verified custom domain
type DomainReverifier interface {
	ReverifyAll(ctx context.Context) (tenancy.ReverifySummary, error)
}

// DomainReverifySchedulerConfig holds configuration for the re-verification scheduler
type DomainReverifySchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval between two passes
	Interval time.Duration

	// RunTimeout bounds one pass
	RunTimeout time.Duration

	// Clock drives the ticker; tests inject a mock
	Clock clock.Clock
}

// DefaultDomainReverifySchedulerConfig returns default configuration.
// Re-verification is opt-in.
func DefaultDomainReverifySchedulerConfig() DomainReverifySchedulerConfig {
	return DomainReverifySchedulerConfig{
		Enabled:    false,
		Interval:   6 * time.Hour,
		RunTimeout: 10 * time.Minute,
	}
}

// DomainReverifyScheduler periodically re-checks verified custom domains so
// that a removed TXT record eventually stops routing the domain.
type DomainReverifyScheduler struct {
	verifier  DomainReverifier
	logger    *zap.Logger
	config    DomainReverifySchedulerConfig
	clock     clock.Clock
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	// runMu serializes passes so a manual trigger never overlaps a tick
	runMu sync.Mutex
}

// NewDomainReverifyScheduler creates a new scheduler
func NewDomainReverifyScheduler(
	verifier DomainReverifier,
	logger *zap.Logger,
	config DomainReverifySchedulerConfig,
) *DomainReverifyScheduler {
	c := config.Clock
	if c == nil {
		c = clock.New()
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = DefaultDomainReverifySchedulerConfig().RunTimeout
	}
	return &DomainReverifyScheduler{
		verifier: verifier,
		logger:   logger,
		config:   config,
		clock:    c,
	}
}

// Start starts the scheduler
func (s *DomainReverifyScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Domain re-verification scheduler is disabled")
		return nil
	}
	if s.config.Interval <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(ctx)

	s.logger.Info("Domain re-verification scheduler started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *DomainReverifyScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Domain re-verification scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Domain re-verification scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *DomainReverifyScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.Ticker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Domain re-verification loop stopping")
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

func (s *DomainReverifyScheduler) execute(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := s.clock.Now()
	sum, err := s.verifier.ReverifyAll(runCtx)
	duration := s.clock.Since(start)
	if err != nil {
		s.logger.Error("Domain re-verification pass failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Domain re-verification pass completed",
		zap.Duration("duration", duration),
		zap.Int("checked", sum.Checked),
		zap.Int("confirmed", sum.Confirmed),
		zap.Int("revoked", sum.Revoked),
		zap.Int("inconclusive", sum.Inconclusive),
		zap.Int("failed", sum.Failed),
	)
}

// TriggerNow runs one pass in the background
func (s *DomainReverifyScheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(ctx)
	}()
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *DomainReverifyScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
