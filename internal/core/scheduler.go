package core

// scheduler.go runs history maintenance in the background.
//
// The prune job deletes conversion records older than the retention window.
// It runs once at start and then every interval, and stops when its context
// is cancelled. A failed run is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// PruneConfig holds configuration for the history prune scheduler.
type PruneConfig struct {
	RetentionDays int           // Days to keep conversion records (default: 30)
	Interval      time.Duration // How often to run (default: 24h)
}

func (c PruneConfig) withDefaults() PruneConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 30
	}
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	return c
}

// StartPruneScheduler periodically deletes old conversion records.
// It returns immediately when history is disabled.
func (s *Service) StartPruneScheduler(ctx context.Context, cfg PruneConfig) {
	if s.history == nil {
		return
	}
	cfg = cfg.withDefaults()

	slog.Info("history prune scheduler started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.Interval.String(),
	)

	s.runPruneJob(ctx, cfg)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history prune scheduler stopped")
			return
		case <-ticker.C:
			s.runPruneJob(ctx, cfg)
		}
	}
}

// runPruneJob performs one prune cycle.
func (s *Service) runPruneJob(ctx context.Context, cfg PruneConfig) {
	start := time.Now()
	before := start.AddDate(0, 0, -cfg.RetentionDays)

	pruned, err := s.history.Prune(ctx, before)
	if err != nil {
		slog.Error("history prune failed", "error", err)
		return
	}

	slog.Info("pruned conversion history",
		"records_pruned", pruned,
		"before", before.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
