package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"language-mirror-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

type ISweeperService interface {
	Start() error
	Stop()
	Running() bool
}

// SweeperService periodically ends sessions that outlived the inactivity
// timeout, complementing the lazy expiry done on reads.
type SweeperService struct {
	session  ISessionService
	interval int
	cron     *cron.Cron
	running  atomic.Bool
	logger   logger.ILogger
}

func NewSweeperService(session ISessionService, intervalSeconds int, log logger.ILogger) ISweeperService {
	return &SweeperService{
		session:  session,
		interval: intervalSeconds,
		logger:   log,
	}
}

func (s *SweeperService) Start() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", s.interval), s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.running.Store(true)
	s.logger.Info("sweeper", "expiry sweeper started", map[string]interface{}{
		"interval_seconds": s.interval,
	})
	return nil
}

func (s *SweeperService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.running.Store(false)
}

func (s *SweeperService) Running() bool {
	return s.running.Load()
}

func (s *SweeperService) sweep() {
	ended := s.session.SweepExpired(context.Background())
	if ended > 0 {
		s.logger.Info("sweeper", "ended expired sessions", map[string]interface{}{
			"count": ended,
		})
	}
	s.session.CheckBackend(context.Background())
}
