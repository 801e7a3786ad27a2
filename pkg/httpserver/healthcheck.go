package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/middleware/pkg/logger"
)

// HealthCheckHandler serves liveness ("ALIVE") when no checks are given and
// readiness ("READY" or 503 "NOT_READY") otherwise. Checks run with the
// request context.
func HealthCheckHandler(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if len(checks) == 0 {
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Component("httpserver"), logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		_, _ = w.Write([]byte("READY"))
	}
}
