// Package scheduler runs harvests and story generation on a timer.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrDailyLimit is returned by a generate cycle skipped by the daily cap.
var ErrDailyLimit = errors.New("daily story limit reached")

// Config holds scheduler configuration.
type Config struct {
	// HarvestInterval is the time between harvests. Zero disables them and
	// Harvest is never called.
	HarvestInterval time.Duration
	// GenerateInterval is the time between generated stories.
	GenerateInterval time.Duration
	// MaxStoriesPerDay caps stories over a rolling day. Zero means no cap.
	MaxStoriesPerDay int

	// Harvest refreshes the corpus.
	Harvest func(ctx context.Context) error
	// Generate writes one story and returns its title.
	Generate func(ctx context.Context) (string, error)
	// StoriesToday counts stories written in the last 24 hours.
	StoriesToday func(ctx context.Context) (int64, error)
}

// Scheduler orchestrates the periodic tasks of the daemon.
type Scheduler struct {
	cfg    Config
	health *Health
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg, health: NewHealth()}
}

// Health returns the component health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}

// Run harvests once if harvesting is enabled, then loops until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("starting scheduler",
		"harvest_interval", s.cfg.HarvestInterval,
		"generate_interval", s.cfg.GenerateInterval,
		"max_stories_per_day", s.cfg.MaxStoriesPerDay,
	)

	var harvestC <-chan time.Time
	if s.harvesting() {
		ticker := time.NewTicker(s.cfg.HarvestInterval)
		defer ticker.Stop()
		harvestC = ticker.C

		_ = s.runHarvestCycle(ctx)
	}

	generateTicker := time.NewTicker(s.cfg.GenerateInterval)
	defer generateTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler shutting down")
			return ctx.Err()

		// Cycle errors are logged and kept in Health; the loop carries on.
		case <-harvestC:
			_ = s.runHarvestCycle(ctx)

		case <-generateTicker.C:
			_ = s.runGenerateCycle(ctx)
		}
	}
}

func (s *Scheduler) harvesting() bool {
	return s.cfg.HarvestInterval > 0 && s.cfg.Harvest != nil
}

// runHarvestCycle refreshes the corpus. A failure leaves the previous
// corpus in place for the next generate cycle.
func (s *Scheduler) runHarvestCycle(ctx context.Context) error {
	slog.Debug("running harvest cycle")

	if err := s.cfg.Harvest(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.health.SetUnhealthy("harvest", err)
		slog.Error("harvest cycle failed", "error", err)
		return err
	}

	s.health.SetHealthy("harvest", "corpus refreshed")
	slog.Info("harvest cycle complete")
	return nil
}

// runGenerateCycle writes a story unless the daily cap is reached, in which
// case it returns ErrDailyLimit.
func (s *Scheduler) runGenerateCycle(ctx context.Context) error {
	slog.Debug("running generate cycle")

	if s.cfg.MaxStoriesPerDay > 0 && s.cfg.StoriesToday != nil {
		today, err := s.cfg.StoriesToday(ctx)
		if err != nil {
			slog.Error("failed to count today's stories", "error", err)
		} else if today >= int64(s.cfg.MaxStoriesPerDay) {
			s.health.SetHealthy("generate", ErrDailyLimit.Error())
			slog.Info("daily story limit reached", "stories_today", today, "max", s.cfg.MaxStoriesPerDay)
			return ErrDailyLimit
		}
	}

	title, err := s.cfg.Generate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.health.SetUnhealthy("generate", err)
		slog.Error("generate cycle failed", "error", err)
		return err
	}

	s.health.SetHealthy("generate", title)
	slog.Info("generate cycle complete", "title", title)
	return nil
}
