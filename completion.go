package rawbridge

import (
	"context"
	"sync/atomic"
)

// FrameResult is the payload of a completion signal: the engine status for
// one frame, with Err set when the frame failed.
type FrameResult struct {
	Status int32
	Err    error
}

// FrameCompletion is the single-slot synchronization object between the
// orchestrating goroutine and the engine's callback thread. The engine
// signals exactly once per frame; the orchestrator waits before submitting
// the next frame, which is what guarantees in-order output with at most one
// frame in flight.
//
// The object is reference counted: the creator holds one reference and the
// engine takes another for the duration of the job (Retain on submit,
// Release after signaling). The releaser runs when the last reference is
// dropped, on every exit path including submit failures.
type FrameCompletion struct {
	ch      chan FrameResult
	refs    atomic.Int32
	release func()
}

// NewFrameCompletion returns a completion holding one reference on behalf of
// the caller. release may be nil; otherwise it runs exactly once, when the
// final reference is dropped.
func NewFrameCompletion(release func()) *FrameCompletion {
	c := &FrameCompletion{
		ch:      make(chan FrameResult, 1),
		release: release,
	}
	c.refs.Store(1)
	return c
}

// Retain takes an additional reference. The engine calls this when it
// accepts a job.
func (c *FrameCompletion) Retain() {
	c.refs.Add(1)
}

// Release drops one reference; the last release runs the releaser.
func (c *FrameCompletion) Release() {
	if c.refs.Add(-1) == 0 && c.release != nil {
		c.release()
	}
}

// Signal delivers the frame outcome. It never blocks: the slot has capacity
// one and the engine signals at most once per frame.
func (c *FrameCompletion) Signal(res FrameResult) {
	c.ch <- res
}

// Wait blocks until the engine signals or ctx is cancelled. There is no
// timeout unless the caller puts one on ctx; a non-responding engine call
// blocks indefinitely under context.Background, matching the engines' own
// wait semantics.
func (c *FrameCompletion) Wait(ctx context.Context) (FrameResult, error) {
	select {
	case res := <-c.ch:
		return res, nil
	case <-ctx.Done():
		return FrameResult{}, ctx.Err()
	}
}
