package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/middleware/pkg/logger"
)

// HookFunc observes a session transition. It receives the resulting data,
// which may be nil.
type HookFunc func(ctx context.Context, data Data)

// Hooks are fired synchronously when a transition is decided, not when
// the session is persisted. Panics are not recovered.
type Hooks struct {
	OnCreate  HookFunc
	OnUpdate  HookFunc
	OnRefresh HookFunc
	OnDelete  HookFunc
}

func (h Hooks) fire(fn HookFunc, ctx context.Context, data Data) {
	if fn != nil {
		fn(ctx, data)
	}
}

// LogHooks returns hooks that log every transition at debug level.
func LogHooks(log *slog.Logger) Hooks {
	if log == nil {
		log = slog.Default()
	}

	event := func(name string) HookFunc {
		return func(ctx context.Context, data Data) {
			log.DebugContext(ctx, "session transition",
				logger.Component("session"),
				logger.Event(name),
				slog.Bool("has_data", data != nil),
			)
		}
	}

	return Hooks{
		OnCreate:  event("create"),
		OnUpdate:  event("update"),
		OnRefresh: event("refresh"),
		OnDelete:  event("delete"),
	}
}
