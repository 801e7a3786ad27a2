// Package async provides small generic helpers for background work.
//
// Async starts a function in its own goroutine and returns a Future, which
// can be awaited, awaited with a timeout, or polled with IsComplete. If the
// supplied context is already cancelled the function is never called.
//
// Group tracks fire-and-forget jobs. It detaches each job from the caller's
// cancellation, optionally bounds it with a per-job timeout, records
// failures, and lets the application wait for outstanding work at shutdown.
// It is the background scheduler used for session storage writes:
//
//	jobs := async.NewGroup(async.WithJobTimeout(5 * time.Second))
//	mgr, err := session.New(
//	    session.WithStorage(store),
//	    session.WithScheduler(jobs),
//	)
//	...
//	_ = jobs.Shutdown(shutdownCtx)
package async
