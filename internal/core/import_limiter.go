package core

// import_limiter.go bounds how many CSV imports run at once.
//
// Each import parses the whole file in memory and holds a write
// transaction, so a burst of large uploads is queued instead of run in
// parallel. A caller waits up to maxWait for a slot and then fails with
// ErrTooManyImports. WaitForDrain lets shutdown wait for running imports.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyImports is returned when no import slot frees up in time.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// Defaults used when Options leaves the limits unset.
const (
	DefaultMaxConcurrentImports = 5
	DefaultImportWait           = 30 * time.Second
)

// ImportLimiter is a counting semaphore over import slots.
type ImportLimiter struct {
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration
	active  atomic.Int64
}

// NewImportLimiter allows maxConcurrent imports; others wait up to maxWait.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultImportWait
	}
	return &ImportLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to maxWait when none is free. The
// caller must Release it.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.TryAcquire() {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyImports
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot without waiting.
func (l *ImportLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ImportLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// Active returns the number of running imports.
func (l *ImportLimiter) Active() int {
	return int(l.active.Load())
}

// WaitForDrain blocks until no import is running or ctx is done.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	if l.Active() == 0 {
		return nil
	}
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Active() == 0 {
				return nil
			}
		}
	}
}

// ImportLimiterStatus is a snapshot of the limiter.
type ImportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	active := l.Active()
	return ImportLimiterStatus{
		Active:        active,
		Available:     l.max - active,
		MaxConcurrent: l.max,
	}
}
