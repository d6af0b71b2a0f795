package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reclassifier moves matured RECEIVED cheques to DUE
type Reclassifier interface {
	ReclassifyDue(ctx context.Context, asOf time.Time, batchSize int) (int, error)
}

// Config holds due scheduler configuration
type Config struct {
	// CheckInterval is how often the reclassification pass runs
	CheckInterval time.Duration
	// BatchSize caps how many cheques one pass moves
	BatchSize int
}

// DefaultConfig returns default due scheduler configuration
func DefaultConfig() Config {
	return Config{
		CheckInterval: time.Hour,
		BatchSize:     200,
	}
}

// DueScheduler periodically reclassifies matured cheques from RECEIVED to
// DUE. A missed tick is harmless since each pass re-examines everything at
// or past its cheque date.
type DueScheduler struct {
	config       Config
	reclassifier Reclassifier
	logger       *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewDueScheduler creates a new due scheduler
func NewDueScheduler(config Config, reclassifier Reclassifier, logger *zap.Logger) *DueScheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultConfig().CheckInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &DueScheduler{
		config:       config,
		reclassifier: reclassifier,
		logger:       logger,
	}
}

// Start starts the scheduler loop and runs one pass immediately
func (s *DueScheduler) Start(ctx context.Context) error {
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

	s.logger.Info("Due scheduler started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Int("batch_size", s.config.BatchSize),
	)

	return nil
}

// Stop stops the scheduler, waiting for an in-flight pass to finish
func (s *DueScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Due scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DueScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	// Catch up on anything that matured while the service was down.
	s.runOnce(ctx)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *DueScheduler) runOnce(ctx context.Context) {
	moved, err := s.reclassifier.ReclassifyDue(ctx, time.Now(), s.config.BatchSize)
	if err != nil {
		s.logger.Error("Due reclassification pass failed",
			zap.Int("moved", moved),
			zap.Error(err),
		)
		return
	}
	if moved > 0 {
		s.logger.Info("Due reclassification pass completed", zap.Int("moved", moved))
	}
}
