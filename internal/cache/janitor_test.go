package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep() int {
	s.calls.Add(1)
	return 1
}

func TestJanitorSweepsUntilCancelled(t *testing.T) {
	sweeper := &countingSweeper{}
	janitor := NewJanitor(sweeper, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("janitor did not sweep in time")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("janitor did not stop after cancel")
	}
}

func TestJanitorRemovesExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(t, 10, clock)
	_ = store.Put("pokemon/1", []byte("x"), time.Second, PutOptions{})
	clock.Advance(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewJanitor(store, 5*time.Millisecond, nil).Run(ctx)

	deadline := time.After(2 * time.Second)
	for store.Stats().Sweeps == 0 {
		select {
		case <-deadline:
			t.Fatalf("janitor did not sweep in time")
		case <-time.After(time.Millisecond):
		}
	}
	if stats := store.Stats(); stats.Expirations != 1 {
		t.Fatalf("expected expired entry to be swept, got %+v", stats)
	}
}

func TestNewJanitorDefaultsInterval(t *testing.T) {
	janitor := NewJanitor(&countingSweeper{}, 0, nil)
	if janitor.interval != 5*time.Minute {
		t.Fatalf("expected default 5m interval, got %s", janitor.interval)
	}
}
