package bootstrap

import (
	"context"
	"fmt"

	"wellbeing_server/core/port/in"
	"wellbeing_server/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic statistics reset.
type Scheduler struct {
	cron  *cron.Cron
	admin in.AdminService
	spec  string
}

// NewScheduler registers the reset job on a standard five-field cron spec.
func NewScheduler(admin in.AdminService, spec string) (*Scheduler, error) {
	s := &Scheduler{
		cron:  cron.New(),
		admin: admin,
		spec:  spec,
	}

	if _, err := s.cron.AddFunc(spec, s.runReset); err != nil {
		return nil, fmt.Errorf("invalid RESET_CRON %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) runReset() {
	affected, err := s.admin.ResetStats(context.Background())
	if err != nil {
		logger.WithError(err).Error("Scheduled statistics reset failed")
		return
	}
	logger.Info("Scheduled statistics reset: %d employees", affected)
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	logger.Info("Statistics reset scheduled: %s", s.spec)

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	logger.Info("Scheduler stopped")
}
