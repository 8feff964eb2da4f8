package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TokenRefresher renews ERP tokens that are close to expiry.
type TokenRefresher interface {
	RefreshExpiring(ctx context.Context) (int, error)
}

// TokenSweeper periodically renews expiring ERP tokens so scheduled syncs
// rarely hit an authentication round trip mid-run.
type TokenSweeper struct {
	interval  time.Duration
	refresher TokenRefresher
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewTokenSweeper creates a new token sweeper
func NewTokenSweeper(interval time.Duration, refresher TokenRefresher, logger *zap.Logger) (*TokenSweeper, error) {
	if interval <= 0 {
		return nil, ErrInvalidConfig
	}
	return &TokenSweeper{
		interval:  interval,
		refresher: refresher,
		logger:    logger,
	}, nil
}

// Start starts the sweeper
func (s *TokenSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Token sweeper started", zap.Duration("interval", s.interval))
	return nil
}

// Stop gracefully stops the sweeper
func (s *TokenSweeper) Stop(ctx context.Context) error {
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
		s.logger.Info("Token sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop renews expiring tokens at each interval tick
func (s *TokenSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *TokenSweeper) sweep(ctx context.Context) {
	renewed, err := s.refresher.RefreshExpiring(ctx)
	if err != nil {
		s.logger.Error("Token sweep failed", zap.Error(err))
		return
	}
	if renewed > 0 {
		s.logger.Info("Token sweep renewed tokens", zap.Int("renewed", renewed))
	}
}
