package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Status(); got.Active != 0 || got.Available != 2 || got.MaxConcurrent != 2 {
		t.Errorf("initial Status = %+v", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.Status(); got.Active != 2 || got.Available != 0 {
		t.Errorf("full Status = %+v", got)
	}

	limiter.Release()
	if got := limiter.Active(); got != 1 {
		t.Errorf("after Release, Active = %d, want 1", got)
	}
	limiter.Release()
	if got := limiter.Active(); got != 0 {
		t.Errorf("after second Release, Active = %d, want 0", got)
	}
}

func TestImportLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewImportLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	if err := limiter.Acquire(ctx); !errors.Is(err, ErrTooManyImports) {
		t.Errorf("Acquire on full limiter = %v, want ErrTooManyImports", err)
	}
	if limiter.TryAcquire() {
		t.Error("TryAcquire on full limiter succeeded")
	}
}

func TestImportLimiter_ContextCanceled(t *testing.T) {
	limiter := NewImportLimiter(1, time.Minute)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter failed")
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire = %v, want context.Canceled", err)
	}
}

func TestImportLimiter_CanceledWithFreeSlot(t *testing.T) {
	limiter := NewImportLimiter(1, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire = %v, want context.Canceled", err)
	}
	if got := limiter.Active(); got != 0 {
		t.Errorf("Active = %d, want 0", got)
	}
}

func TestImportLimiter_WaitsForSlot(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		limiter.Release()
	}()

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire after release = %v", err)
	}
	limiter.Release()
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)

	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Errorf("WaitForDrain on idle limiter = %v", err)
	}

	limiter.TryAcquire()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain with active import = %v, want DeadlineExceeded", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		limiter.Release()
	}()
	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Errorf("WaitForDrain after release = %v", err)
	}
}

func TestNewImportLimiterDefaults(t *testing.T) {
	limiter := NewImportLimiter(0, 0)
	if got := limiter.Status().MaxConcurrent; got != DefaultMaxConcurrentImports {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentImports)
	}
	if limiter.maxWait != DefaultImportWait {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultImportWait)
	}
}
