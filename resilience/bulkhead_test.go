package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	var rejected error
	b := NewBulkhead(BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		OnReject:      func(_ string, err error) { rejected = err },
	})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	if b.InUse() != 1 || b.Available() != 0 {
		t.Errorf("expected one slot in use, got %d in use, %d free", b.InUse(), b.Available())
	}

	err := b.Execute(context.Background(), func() error {
		t.Error("function should not have been called")
		return nil
	})
	if !errors.Is(err, ErrBulkheadFull) || !errors.Is(rejected, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v (reject hook %v)", err, rejected)
	}

	b.Release()
	if err := b.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("expected slot after release, got %v", err)
	}
	if b.InUse() != 0 {
		t.Errorf("expected slot released after Execute, got %d", b.InUse())
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})
	_ = b.Acquire(context.Background())
	defer b.Release()

	if err := b.Acquire(context.Background()); !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestBulkhead_WaitGetsReleasedSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	_ = b.Acquire(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		b.Release()
	}()
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("expected to acquire released slot, got %v", err)
	}
	b.Release()
}

func TestBulkhead_WaitCanceled(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	_ = b.Acquire(context.Background())
	defer b.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBulkhead_Defaults(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})
	if b.Available() != 10 {
		t.Errorf("expected 10 slots, got %d", b.Available())
	}
}
