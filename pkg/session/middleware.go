package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dmitrymomot/middleware/pkg/logger"
)

// Middleware attaches a Session to every request context and persists it
// just before the response headers go out, or after the handler returns
// if it wrote nothing.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Load(w, r)
		ctx := WithSession(r.Context(), sess)

		pw := &persistWriter{
			ResponseWriter: w,
			persist: func() {
				m.persist(ctx, sess)
			},
		}

		// deferred so a panicking handler still sends cookie headers to
		// an outer recoverer
		defer pw.finish()
		next.ServeHTTP(pw, r.WithContext(ctx))
	})
}

func (m *Manager) persist(ctx context.Context, sess *Session) {
	err := sess.Persist(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		m.logger.DebugContext(ctx, "request aborted, session not persisted",
			logger.Component("session"),
			logger.SessionID(sess.ID()),
		)
	default:
		m.logger.ErrorContext(ctx, "failed to persist session",
			logger.Component("session"),
			logger.SessionID(sess.ID()),
			logger.Error(err),
		)
	}
}

// persistWriter runs persist exactly once, before the first byte of the
// response is committed.
type persistWriter struct {
	http.ResponseWriter
	persist func()
	once    sync.Once
}

func (w *persistWriter) finish() {
	w.once.Do(w.persist)
}

func (w *persistWriter) WriteHeader(code int) {
	w.finish()
	w.ResponseWriter.WriteHeader(code)
}

func (w *persistWriter) Write(b []byte) (int, error) {
	w.finish()
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher
func (w *persistWriter) Flush() {
	w.finish()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer
func (w *persistWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
