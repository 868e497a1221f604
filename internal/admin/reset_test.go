package admin

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	resets   int
	resetErr error
	before   time.Time
	pruned   int64
}

func (f *fakeStore) Reset(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("reset without deadline")
	}
	f.resets++
	return f.resetErr
}

func (f *fakeStore) Prune(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return f.pruned, nil
}

func TestMaintenance_ResetAll(t *testing.T) {
	store := &fakeStore{}
	m := &Maintenance{Store: store}

	if err := m.ResetAll(context.Background()); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	if store.resets != 1 {
		t.Errorf("resets = %d, want 1", store.resets)
	}

	store.resetErr = errors.New("permission denied")
	if err := m.ResetAll(context.Background()); err == nil {
		t.Error("ResetAll() expected error")
	}
}

func TestMaintenance_PruneOlderThan(t *testing.T) {
	now := time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC)
	store := &fakeStore{pruned: 12}
	m := &Maintenance{Store: store, Now: func() time.Time { return now }}

	n, err := m.PruneOlderThan(context.Background(), 30)
	if err != nil {
		t.Fatalf("PruneOlderThan() error = %v", err)
	}
	if n != 12 {
		t.Errorf("PruneOlderThan() = %d, want 12", n)
	}
	if want := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC); !store.before.Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.before, want)
	}

	if _, err := m.PruneOlderThan(context.Background(), 0); err == nil {
		t.Error("PruneOlderThan(0) expected error")
	}
}
