package web

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunLimiterAcquireRelease(t *testing.T) {
	limiter := newRunLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.activeCount(); got != 0 {
		t.Errorf("initial activeCount = %d, want 0", got)
	}

	if err := limiter.acquire(ctx); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if err := limiter.acquire(ctx); err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	if got := limiter.activeCount(); got != 2 {
		t.Errorf("activeCount = %d, want 2", got)
	}

	limiter.release()
	limiter.release()
	if got := limiter.activeCount(); got != 0 {
		t.Errorf("after release, activeCount = %d, want 0", got)
	}
}

func TestRunLimiterRejectsWhenFull(t *testing.T) {
	limiter := newRunLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.acquire(ctx); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer limiter.release()

	err := limiter.acquire(ctx)
	if !errors.Is(err, ErrTooManyRuns) {
		t.Fatalf("err = %v, want ErrTooManyRuns", err)
	}
}

func TestRunLimiterHonorsCancellation(t *testing.T) {
	limiter := newRunLimiter(1, time.Minute)

	if err := limiter.acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer limiter.release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunLimiterDefaults(t *testing.T) {
	limiter := newRunLimiter(0, 0)
	if cap(limiter.semaphore) != defaultMaxConcurrentRuns {
		t.Errorf("cap = %d, want %d", cap(limiter.semaphore), defaultMaxConcurrentRuns)
	}
	if limiter.maxWait != defaultSlotWait {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, defaultSlotWait)
	}
}
