package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/middleware/pkg/httpserver"
	"github.com/dmitrymomot/middleware/pkg/logger"
	"github.com/dmitrymomot/middleware/pkg/session"
)

func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	return logger.RequestID(id), id != ""
}

func newRouter(manager *session.Manager, log *slog.Logger, readiness []func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthCheckHandler(log))
	r.Get("/ready", httpserver.HealthCheckHandler(log, readiness...))

	r.Group(func(r chi.Router) {
		r.Use(manager.Middleware)

		h := &handlers{log: log}
		r.Get("/", h.visit)
		r.Get("/me", h.me)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
	})

	return r
}

type handlers struct {
	log *slog.Logger
}

// keepUser extends expired sessions of logged-in users and lets anonymous
// ones start over.
func keepUser(_ context.Context, data session.Data) (session.Data, error) {
	if _, ok := data.GetString("user"); !ok {
		return nil, nil
	}
	return data, nil
}

func (h *handlers) visit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.MustFromContext(ctx)

	if _, err := sess.Get(ctx, keepUser); err != nil {
		h.fail(w, r, err)
		return
	}

	var visits int
	if err := sess.UpdateFunc(ctx, func(current session.Data) (session.Data, error) {
		next := current.Clone()
		if next == nil {
			next = session.Data{}
		}
		visits, _ = next.GetInt("visits")
		visits++
		next["visits"] = visits
		return next, nil
	}); err != nil {
		h.fail(w, r, err)
		return
	}

	h.json(w, http.StatusOK, map[string]any{"session_id": sess.ID(), "visits": visits})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := session.MustFromContext(ctx).Get(ctx, keepUser)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user, ok := data.GetString("user")
	if !ok {
		h.json(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}
	h.json(w, http.StatusOK, map[string]string{"user": user})
}

// login rotates the session id so a pre-login id cannot be fixated.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := r.FormValue("user")
	if user == "" {
		h.json(w, http.StatusBadRequest, map[string]string{"error": "user is required"})
		return
	}

	sess := session.MustFromContext(ctx)
	sess.Delete(ctx)
	if err := sess.Update(ctx, session.Data{"user": user}); err != nil {
		h.fail(w, r, err)
		return
	}

	h.json(w, http.StatusOK, map[string]string{"user": user, "session_id": sess.ID()})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	session.MustFromContext(r.Context()).Delete(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, session.ErrSessionDestroyed) {
		status = http.StatusUnauthorized
	}

	h.log.ErrorContext(r.Context(), "session error", logger.Component("sessiondemo"), logger.Error(err))
	h.json(w, status, map[string]string{"error": http.StatusText(status)})
}

func (h *handlers) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
