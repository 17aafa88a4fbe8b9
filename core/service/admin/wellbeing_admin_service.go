package admin

import (
	"context"

	"wellbeing_server/core/port/in"
	"wellbeing_server/core/port/out"
	"wellbeing_server/pkg/apperr"
	"wellbeing_server/pkg/logger"
	"wellbeing_server/pkg/metrics"
)

// Service implements in.AdminService
type Service struct {
	statsRepo out.StatsRepository
	metrics   *metrics.Collector
	log       *logger.Logger
}

// NewService creates a new AdminService
func NewService(statsRepo out.StatsRepository, m *metrics.Collector, log *logger.Logger) in.AdminService {
	if log == nil {
		log = logger.Default()
	}
	return &Service{statsRepo: statsRepo, metrics: m, log: log}
}

// ResetStats deletes every violent word occurrence and zeroes all employee counters.
func (s *Service) ResetStats(ctx context.Context) (int64, error) {
	affected, err := s.statsRepo.ResetAll(ctx)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Error("statistics reset failed")
		return 0, apperr.DatabaseError("reset stats", err)
	}

	s.metrics.RecordReset()
	s.log.WithContext(ctx).WithField("employees_affected", affected).Info("statistics reset")
	return affected, nil
}
