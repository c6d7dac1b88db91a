package web

// limiter.go bounds concurrent audit runs. An audit holds the whole parsed
// dataset in memory, so unbounded parallel uploads could exhaust the
// process; requests beyond the limit wait briefly for a slot and then fail
// with 503.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRuns is returned when all run slots are occupied and the wait
// timeout expires. Clients should retry after a short delay.
var ErrTooManyRuns = errors.New("too many concurrent audit runs, please try again later")

const (
	defaultMaxConcurrentRuns = 4
	defaultSlotWait          = 10 * time.Second
)

// runLimiter is a semaphore over in-flight audit runs.
type runLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

func newRunLimiter(maxConcurrent int, maxWait time.Duration) *runLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentRuns
	}
	if maxWait <= 0 {
		maxWait = defaultSlotWait
	}
	return &runLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// acquire blocks up to maxWait for a run slot. The caller must release()
// exactly once on success.
func (l *runLimiter) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyRuns
	}
}

func (l *runLimiter) release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// activeCount returns the number of in-flight runs.
func (l *runLimiter) activeCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}
