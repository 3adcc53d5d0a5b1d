// Package taskpool provides a bounded worker pool for CPU-heavy or
// blocking work (embedding extraction, backend network calls, file I/O),
// keeping that work off latency-sensitive paths.
package taskpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool limits the number of concurrently running tasks.
// The zero value is not usable; use New.
type Pool struct {
	slots chan struct{}
}

// New creates a Pool running at most size tasks concurrently.
// If size <= 0, the number of CPUs is used.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Do runs fn on a pool worker and waits for it to finish. The wait is
// cancelable: if ctx is done before a worker slot is free, Do returns
// ctx.Err() without running fn.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("taskpool: task panic: %v", r)
			}
			<-p.slots
		}()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The task keeps its slot until it returns; the caller stops waiting.
		return ctx.Err()
	}
}

// Go submits fn without waiting. Errors are logged, not returned.
func (p *Pool) Go(ctx context.Context, fn func(ctx context.Context) error) {
	go func() {
		if err := p.Do(ctx, fn); err != nil && ctx.Err() == nil {
			slog.Warn("taskpool: background task failed", "error", err)
		}
	}()
}

// Each runs fn for every element of items on pool workers and waits for
// all of them. The first error cancels the remaining tasks' context.
func Each[T any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range items {
		g.Go(func() error {
			return p.Do(gctx, func(ctx context.Context) error {
				return fn(ctx, item)
			})
		})
	}
	return g.Wait()
}
