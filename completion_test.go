package rawbridge

import (
	"context"
	"testing"
	"time"
)

func TestFrameCompletionSignalWait(t *testing.T) {
	c := NewFrameCompletion(nil)

	go func() {
		time.Sleep(time.Millisecond)
		c.Signal(FrameResult{Status: 7})
	}()

	res, err := c.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != 7 {
		t.Errorf("status = %d, want 7", res.Status)
	}
}

func TestFrameCompletionRefCount(t *testing.T) {
	released := 0
	c := NewFrameCompletion(func() { released++ })

	// Engine takes its reference on submit.
	c.Retain()

	// Engine signals and drops its reference first.
	c.Signal(FrameResult{})
	c.Release()
	if released != 0 {
		t.Fatal("released while the orchestrator still holds a reference")
	}

	// Orchestrator waits, then drops the last reference.
	if _, err := c.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.Release()
	if released != 1 {
		t.Fatalf("releaser ran %d times, want 1", released)
	}
}

func TestFrameCompletionWaitCancel(t *testing.T) {
	c := NewFrameCompletion(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Wait(ctx); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
