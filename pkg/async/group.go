package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Group runs fire-and-forget jobs in the background and tracks them so a
// caller can wait for all of them at shutdown. Jobs are detached from the
// cancellation of the context they were scheduled with, which lets work
// started by a request outlive the request.
//
// Group satisfies session.Scheduler.
type Group struct {
	timeout time.Duration
	onError func(error)

	wg     sync.WaitGroup
	mu     sync.Mutex
	errs   []error
	closed bool
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithJobTimeout bounds every job with its own deadline. Zero means no limit.
func WithJobTimeout(d time.Duration) GroupOption {
	return func(g *Group) {
		g.timeout = d
	}
}

// WithErrorHandler is called for every failed job, from the job's goroutine.
func WithErrorHandler(fn func(error)) GroupOption {
	return func(g *Group) {
		g.onError = fn
	}
}

func NewGroup(opts ...GroupOption) *Group {
	g := &Group{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Go schedules fn. After Close, fn is dropped and ErrGroupClosed is recorded.
func (g *Group) Go(ctx context.Context, fn func(context.Context) error) {
	g.mu.Lock()
	if g.closed {
		g.errs = append(g.errs, ErrGroupClosed)
		g.mu.Unlock()
		return
	}
	g.wg.Add(1)
	g.mu.Unlock()

	jobCtx := context.WithoutCancel(ctx)

	f := Async(jobCtx, fn, func(ctx context.Context, fn func(context.Context) error) (struct{}, error) {
		if g.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return struct{}{}, fn(ctx)
	})

	go func() {
		defer g.wg.Done()
		if _, err := f.Await(); err != nil {
			g.record(err)
		}
	}()
}

// Wait blocks until every scheduled job has finished and returns their
// joined errors.
func (g *Group) Wait() error {
	g.wg.Wait()
	return g.Err()
}

// Shutdown stops accepting jobs and waits for running ones until ctx is done.
func (g *Group) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return g.Err()
	case <-ctx.Done():
		return errors.Join(ctx.Err(), g.Err())
	}
}

// Err returns the joined errors of jobs finished so far.
func (g *Group) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

func (g *Group) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()

	if g.onError != nil {
		g.onError(err)
	}
}
