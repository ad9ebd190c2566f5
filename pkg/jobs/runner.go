// Package jobs runs background work on behalf of the test driver and hands
// back pollable handles. Concurrency is bounded by a worker budget so a
// stress plan cannot open an unbounded number of SSH sessions at once.
package jobs

import (
	"context"
	"fmt"
	"sync"
)

type Runner struct {
	sem    chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewRunner(nbWorkers int) *Runner {
	if nbWorkers < 1 {
		nbWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		sem:    make(chan struct{}, nbWorkers),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit queues w and returns a handle immediately. The work starts as soon
// as a worker slot frees up; a closed runner resolves the handle with
// context.Canceled instead of running.
func (r *Runner) Submit(w Work) *Handle {
	c := make(chan Result, 1)
	ctx, cancel := context.WithCancel(r.ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		select {
		case <-ctx.Done():
			c <- Result{Err: ctx.Err()}
			return
		case r.sem <- struct{}{}:
		}
		defer func() { <-r.sem }()

		defer func() {
			if rec := recover(); rec != nil {
				c <- Result{Err: fmt.Errorf("job panicked: %v", rec)}
			}
		}()

		v, err := w(ctx)
		c <- Result{Data: v, Err: err}
	}()

	return newHandle(c, cancel)
}

// Close cancels all outstanding jobs and waits for their goroutines.
func (r *Runner) Close() {
	r.once.Do(func() {
		r.cancel()
		r.wg.Wait()
	})
}
