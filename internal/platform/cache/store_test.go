package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errUnexpectedValue = errors.New("unexpected value")

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "key", 42)
	if _, ok := store.Get(context.Background(), "key"); !ok {
		t.Fatal("expected cached value before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "key"); ok {
		t.Fatal("expected value to expire")
	}
}

func TestStore_EvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour, 2)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "a", 1)
	now = now.Add(time.Second)
	store.Set(context.Background(), "b", 2)
	now = now.Add(time.Second)
	store.Set(context.Background(), "c", 3)

	if _, ok := store.Get(context.Background(), "a"); ok {
		t.Fatal("expected oldest entry to be evicted")
	}
	if _, ok := store.Get(context.Background(), "b"); !ok {
		t.Fatal("expected newer entry to survive")
	}
	if _, ok := store.Get(context.Background(), "c"); !ok {
		t.Fatal("expected newest entry to survive")
	}
	if got := store.Len(); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}

func TestStore_FlushDropsEverything(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour, 0)
	store.Set(context.Background(), "a", 1)
	store.Set(context.Background(), "b", 2)

	store.Flush(context.Background())
	if got := store.Len(); got != 0 {
		t.Fatalf("expected empty store after flush, got %d entries", got)
	}
}
