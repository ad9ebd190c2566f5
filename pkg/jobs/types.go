package jobs

import (
	"context"
	"sync"
)

// Work is a long-running unit of work, typically a remote command that
// outlives the caller's interest in blocking on it.
type Work func(ctx context.Context) (any, error)

type Result struct {
	Data any
	Err  error
}

// Handle observes a background job. The underlying work keeps running on
// the guest whether or not anyone holds the handle; the controller learns
// about completion only by polling.
type Handle struct {
	c      chan Result
	cancel context.CancelFunc

	mu     sync.Mutex
	done   bool
	result Result
}

func newHandle(c chan Result, cancel context.CancelFunc) *Handle {
	return &Handle{c: c, cancel: cancel}
}

// IsRunning reports whether the job has produced a result yet. It never
// blocks; once a result is observed it is cached for Wait.
func (h *Handle) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return false
	}
	select {
	case r := <-h.c:
		h.result = r
		h.done = true
		return false
	default:
		return true
	}
}

// Wait blocks until the job produces a result or ctx expires.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	h.mu.Lock()
	if h.done {
		r := h.result
		h.mu.Unlock()
		return r, nil
	}
	h.mu.Unlock()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-h.c:
		h.mu.Lock()
		h.result = r
		h.done = true
		h.mu.Unlock()
		return r, nil
	}
}

// Result returns the cached result, if the job already finished.
func (h *Handle) Result() (Result, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.done
}

// Stop cancels the job's context. It does not reach into the guest: a
// remote process launched by the job keeps its own fate (see the driver's
// deadline policy).
func (h *Handle) Stop() {
	h.cancel()
}
