package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/integration"
)

// SyncRunner runs a full catalog sync for one tenant.
type SyncRunner interface {
	SyncAll(ctx context.Context, tenantID uuid.UUID) error
}

// SyncRunnerFunc adapts a function to the SyncRunner interface.
type SyncRunnerFunc func(ctx context.Context, tenantID uuid.UUID) error

func (f SyncRunnerFunc) SyncAll(ctx context.Context, tenantID uuid.UUID) error {
	return f(ctx, tenantID)
}

// SyncSchedulerConfig holds configuration for the periodic sync scheduler
type SyncSchedulerConfig struct {
	// Interval is the full sync cadence per tenant
	Interval time.Duration
	// JobTimeout is the maximum time a single tenant sync can run
	JobTimeout time.Duration
	// MaxConcurrentJobs is the number of tenant syncs processed in parallel
	MaxConcurrentJobs int
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Interval:          6 * time.Hour,
		JobTimeout:        30 * time.Minute,
		MaxConcurrentJobs: 3,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxConcurrentJobs <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler periodically runs a full ERP sync for every tenant with an
// active connection. Tenants are processed through a small worker pool so a
// slow ERP account cannot stall the whole sweep.
type SyncScheduler struct {
	config SyncSchedulerConfig
	conns  integration.ConnectionRepository
	runner SyncRunner
	logger *zap.Logger

	jobs      chan uuid.UUID
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, conns integration.ConnectionRepository, runner SyncRunner, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SyncScheduler{
		config: config,
		conns:  conns,
		runner: runner,
		logger: logger,
		jobs:   make(chan uuid.UUID, 100),
	}, nil
}

// Start starts the scheduler
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
		zap.Int("workers", s.config.MaxConcurrentJobs),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// Trigger enqueues an out-of-band sync for one tenant
func (s *SyncScheduler) Trigger(tenantID uuid.UUID) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	select {
	case s.jobs <- tenantID:
		return nil
	default:
		return ErrJobQueueFull
	}
}

// runLoop enqueues every active tenant at each interval tick
func (s *SyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run an initial sweep shortly after startup rather than waiting a
	// full interval.
	s.enqueueAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueAll(ctx)
		}
	}
}

// enqueueAll queues a sync job for every tenant with an active connection
func (s *SyncScheduler) enqueueAll(ctx context.Context) {
	conns, err := s.conns.FindAllActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active ERP connections", zap.Error(err))
		return
	}

	for _, conn := range conns {
		select {
		case s.jobs <- conn.TenantID:
		default:
			s.logger.Warn("Sync job queue full, skipping tenant",
				zap.String("tenant_id", conn.TenantID.String()),
			)
		}
	}

	s.logger.Debug("Sync sweep enqueued", zap.Int("tenants", len(conns)))
}

// worker processes tenant sync jobs from the queue
func (s *SyncScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case tenantID, ok := <-s.jobs:
			if !ok {
				return
			}
			s.runSync(ctx, tenantID, workerID)
		}
	}
}

// runSync executes a single tenant sync with the configured deadline
func (s *SyncScheduler) runSync(ctx context.Context, tenantID uuid.UUID, workerID int) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	err := s.runner.SyncAll(jobCtx, tenantID)
	switch {
	case err == nil:
		s.logger.Info("Scheduled sync completed",
			zap.Int("worker_id", workerID),
			zap.String("tenant_id", tenantID.String()),
			zap.Duration("elapsed", time.Since(start)),
		)
	case errors.Is(err, integration.ErrSyncAlreadyRunning):
		// A manual or webhook-triggered sync beat us to it.
		s.logger.Debug("Scheduled sync skipped, already running",
			zap.String("tenant_id", tenantID.String()),
		)
	default:
		s.logger.Error("Scheduled sync failed",
			zap.Int("worker_id", workerID),
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	}
}
