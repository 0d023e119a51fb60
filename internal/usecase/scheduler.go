package usecase

import (
	"context"
	"log/slog"
	"time"

	"CampaignMonitor/internal/ports"
)

// Scheduler wires the ticker-like driver with the ingestion worker. The
// driver owns cadence; the crawler stays free of internal timers.
type Scheduler struct {
	driver  ports.Scheduler
	crawler *Crawler
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring ingestion passes.
func NewScheduler(driver ports.Scheduler, crawler *Crawler, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, crawler: crawler, logger: logger}
}

// Start registers the ingestion pass with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.crawler == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.crawler.RunIngestionPass(ctx); err != nil {
			s.logger.Error("scheduled ingestion pass failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
