// Package admin provides administrative operations for the history database.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ResetTimeout is the maximum duration for database maintenance operations.
const ResetTimeout = 30 * time.Second

// HistoryStore is the maintenance surface of the history store.
type HistoryStore interface {
	Reset(ctx context.Context) error
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Maintenance runs destructive operations against the history store.
type Maintenance struct {
	Store HistoryStore
	Now   func() time.Time
}

type resetFn func(ctx context.Context) error

// ResetAll deletes every conversion record.
// This is a destructive operation - use with caution.
func (m *Maintenance) ResetAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	if err := m.runResets(ctx, []resetFn{
		m.Store.Reset,
	}); err != nil {
		return err
	}

	slog.Warn("conversion history reset")
	return nil
}

// PruneOlderThan deletes records older than the given number of days and
// returns how many were removed.
func (m *Maintenance) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention must be at least 1 day, got %d", days)
	}

	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	before := m.now().AddDate(0, 0, -days)
	n, err := m.Store.Prune(ctx, before)
	if err != nil {
		return 0, err
	}

	slog.Info("pruned conversion history", "records_pruned", n, "before", before.Format(time.RFC3339))
	return n, nil
}

func (m *Maintenance) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Maintenance) runResets(ctx context.Context, resets []resetFn) error {
	for _, reset := range resets {
		if err := reset(ctx); err != nil {
			return err
		}
	}
	return nil
}
