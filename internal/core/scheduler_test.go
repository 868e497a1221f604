package core

import (
	"context"
	"testing"
	"time"
)

func TestPruneConfig_WithDefaults(t *testing.T) {
	got := PruneConfig{}.withDefaults()
	if got.RetentionDays != 30 || got.Interval != 24*time.Hour {
		t.Errorf("withDefaults() = %+v", got)
	}

	custom := PruneConfig{RetentionDays: 7, Interval: time.Hour}.withDefaults()
	if custom.RetentionDays != 7 || custom.Interval != time.Hour {
		t.Errorf("withDefaults() overrode custom values: %+v", custom)
	}
}

func TestRunPruneJob_Cutoff(t *testing.T) {
	history := &fakeHistory{}
	svc, err := NewService(testServiceConfig(), history, nil)
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	svc.runPruneJob(t.Context(), PruneConfig{RetentionDays: 7, Interval: time.Hour})

	if len(history.pruned) != 1 {
		t.Fatalf("prune calls = %d, want 1", len(history.pruned))
	}
	want := start.AddDate(0, 0, -7)
	if diff := history.pruned[0].Sub(want); diff < 0 || diff > time.Minute {
		t.Errorf("cutoff = %v, want about %v", history.pruned[0], want)
	}
}

func TestStartPruneScheduler(t *testing.T) {
	t.Run("returns immediately without history", func(t *testing.T) {
		svc, err := NewService(testServiceConfig(), nil, nil)
		if err != nil {
			t.Fatal(err)
		}

		done := make(chan struct{})
		go func() {
			svc.StartPruneScheduler(t.Context(), PruneConfig{})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not return")
		}
	})

	t.Run("runs at start and stops on cancel", func(t *testing.T) {
		history := &fakeHistory{}
		svc, err := NewService(testServiceConfig(), history, nil)
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan struct{})
		go func() {
			svc.StartPruneScheduler(ctx, PruneConfig{Interval: time.Hour})
			close(done)
		}()

		deadline := time.Now().Add(time.Second)
		for {
			history.mu.Lock()
			n := len(history.pruned)
			history.mu.Unlock()
			if n > 0 {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("initial prune did not run")
			}
			time.Sleep(10 * time.Millisecond)
		}

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop after cancel")
		}
	})
}
