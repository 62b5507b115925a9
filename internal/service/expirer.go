package service

import (
	"context"
	"sync"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultExpirerInterval = 10 * time.Minute
	defaultIdleTimeout     = 2 * time.Hour
)

// ExpirerService removes dialog sessions that have been idle too long.
type ExpirerService struct {
	sessions domain.SessionStore
	logger   *zap.Logger

	interval    time.Duration
	idleTimeout time.Duration
	now         func() time.Time
	stopCh      chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewExpirerService(sessions domain.SessionStore, logger *zap.Logger) *ExpirerService {
	return &ExpirerService{
		sessions:    sessions,
		logger:      logger,
		interval:    defaultExpirerInterval,
		idleTimeout: defaultIdleTimeout,
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}
}

func (s *ExpirerService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

func (s *ExpirerService) SetIdleTimeout(d time.Duration) {
	if d > 0 {
		s.idleTimeout = d
	}
}

// Start runs the expirer on a periodic schedule in a background goroutine.
func (s *ExpirerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("session expirer started",
			zap.Duration("interval", s.interval),
			zap.Duration("idle_timeout", s.idleTimeout))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.RunOnce(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("session expirer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer. It is safe to call more than once.
func (s *ExpirerService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// RunOnce deletes every session idle since before now minus the idle timeout.
func (s *ExpirerService) RunOnce(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.idleTimeout)
	deleted, err := s.sessions.DeleteIdleBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to delete idle sessions", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		expiredSessions.Add(float64(deleted))
		s.logger.Info("deleted idle sessions", zap.Int64("count", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted
}
