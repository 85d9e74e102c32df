// Package jobs manages scheduled background work.
package jobs

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// QuotaResetter zeroes every user's monthly task counter.
type QuotaResetter interface {
	ResetAllMonthlyUsage()
}

// Scheduler runs the monthly quota reset on the first of each month (UTC).
type Scheduler struct {
	cron  *cron.Cron
	users QuotaResetter
	log   *slog.Logger
}

func NewScheduler(users QuotaResetter, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{cron: cron.New(), users: users, log: log}
}

func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc("0 0 1 * *", func() {
		s.log.Info("resetting monthly task quotas")
		s.users.ResetAllMonthlyUsage()
	})
	if err != nil {
		s.log.Error("schedule quota reset", "error", err)
		return
	}
	s.cron.Start()
	s.log.Info("scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}
