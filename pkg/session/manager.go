package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/middleware/pkg/cookie"
	"github.com/dmitrymomot/middleware/pkg/secrets"
)

// Manager holds the per-application session configuration and hands out
// one Session per request.
type Manager struct {
	config        Config
	key           []byte
	codec         *Codec
	storage       Storage
	duration      *Duration
	transport     Transport
	cookieManager *cookie.Manager
	cookieOptions []cookie.Option
	hooks         Hooks
	logger        *slog.Logger
	scheduler     Scheduler
	newID         func() string
	now           func() time.Time

	machine *machine
}

// New creates a session manager. It fails when no usable secret or key is
// configured, or when the duration is inconsistent.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		config: DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.duration == nil {
		m.duration = m.config.duration()
	}
	if d := m.duration; d != nil && (d.Absolute <= 0 || d.Inactivity < 0) {
		return nil, ErrInvalidDuration
	}

	if m.codec == nil {
		codec, err := m.buildCodec()
		if err != nil {
			return nil, err
		}
		m.codec = codec
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			m.cookieManager = cookie.New(m.config.cookieOptions()...)
		}
		var transport Transport = NewCookieTransport(m.cookieManager, m.config.CookieName, m.cookieOptions...)
		if m.config.HeaderName != "" {
			transport = NewCompositeTransport(transport, NewHeaderTransport(m.config.HeaderName))
		}
		m.transport = transport
	}

	m.machine = &machine{
		storage:  m.storage,
		duration: m.duration,
		hooks:    m.hooks,
		newID:    m.newID,
		now:      m.now,
	}

	return m, nil
}

func (m *Manager) buildCodec() (*Codec, error) {
	clock := WithCodecClock(m.now)

	switch {
	case m.key != nil:
		return NewCodecWithKey(m.key, clock)
	case m.config.Secret != "":
		return NewCodec(m.config.Secret, clock)
	default:
		return nil, errors.Join(ErrNoCodec, secrets.ErrMissingSecret)
	}
}

// Load returns the Session for the request. The caller owns it and must
// call Persist before the response headers are written; Middleware does
// this automatically.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	return &Session{
		m: m,
		w: w,
		r: r,
	}
}

// Codec returns the codec used to seal session tokens.
func (m *Manager) Codec() *Codec {
	return m.codec
}

// Stateless reports whether session data travels inside the cookie.
func (m *Manager) Stateless() bool {
	return m.storage == nil
}
