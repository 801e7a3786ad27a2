// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run listens on the configured address and blocks until the context is
// cancelled or SIGINT/SIGTERM arrives. It then drains in-flight requests
// and runs the registered shutdown hooks, all within ShutdownTimeout.
//
//	jobs := async.NewGroup()
//	srv := httpserver.NewFromConfig(cfg,
//	    httpserver.WithLogger(log),
//	    httpserver.WithShutdownHook(jobs.Shutdown),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server failed", logger.Error(err))
//	}
//
// HealthCheckHandler builds liveness and readiness endpoints from plain
// check functions such as redis.Healthcheck.
package httpserver
