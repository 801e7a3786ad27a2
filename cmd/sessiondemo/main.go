// Command sessiondemo serves a small API exercising encrypted sessions:
// an anonymous visit counter, login with session rotation, and logout.
//
// Storage is chosen with SESSION_STORAGE: "cookie" (stateless, default),
// "memory" or "redis" (REDIS_URL). Setting SESSION_HEADER_NAME also serves
// the token in that header for API clients.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/middleware/pkg/async"
	"github.com/dmitrymomot/middleware/pkg/config"
	"github.com/dmitrymomot/middleware/pkg/httpserver"
	"github.com/dmitrymomot/middleware/pkg/logger"
	"github.com/dmitrymomot/middleware/pkg/redis"
	"github.com/dmitrymomot/middleware/pkg/session"
)

type demoConfig struct {
	Storage    string        `env:"SESSION_STORAGE" envDefault:"cookie"`
	JobTimeout time.Duration `env:"SESSION_WRITE_TIMEOUT" envDefault:"5s"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		logCfg     logger.Config
		httpCfg    httpserver.Config
		sessionCfg session.Config
		demoCfg    demoConfig
	)
	for _, load := range []func() error{
		func() error { return config.Load(&logCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&sessionCfg) },
		func() error { return config.Load(&demoCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	log := logger.NewFromConfig(logCfg, logger.WithContextExtractors(requestIDExtractor))
	logger.SetAsDefault(log)

	jobs := async.NewGroup(async.WithJobTimeout(demoCfg.JobTimeout))
	shutdownHooks := []httpserver.Option{httpserver.WithShutdownHook(jobs.Shutdown)}

	opts := []session.Option{
		session.WithLogger(log),
		session.WithHooks(session.LogHooks(log)),
	}
	var readiness []func(context.Context) error

	switch demoCfg.Storage {
	case "cookie":
	case "memory":
		store := session.NewMemoryStorage(time.Minute, session.WithMemoryTTL(sessionCfg.Duration.Absolute))
		opts = append(opts, session.WithStorage(store))
		shutdownHooks = append(shutdownHooks, httpserver.WithShutdownHook(func(context.Context) error {
			return store.Close()
		}))
	case "redis":
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		opts = append(opts,
			session.WithStorage(redis.NewSessionStorageFromConfig(client, redisCfg)),
			session.WithScheduler(jobs),
		)
		readiness = append(readiness, redis.Healthcheck(client))
		// registered after jobs.Shutdown so pending writes land first
		shutdownHooks = append(shutdownHooks, httpserver.WithShutdownHook(func(context.Context) error {
			return client.Close()
		}))
	default:
		return errors.New("unknown SESSION_STORAGE " + demoCfg.Storage)
	}

	manager, err := session.NewFromConfig(sessionCfg, opts...)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "session manager ready",
		logger.Component("sessiondemo"),
		slog.String("storage", demoCfg.Storage),
		slog.Bool("stateless", manager.Stateless()),
	)

	srv := httpserver.NewFromConfig(httpCfg, append(shutdownHooks, httpserver.WithLogger(log))...)
	return srv.Run(ctx, newRouter(manager, log, readiness))
}
