package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/middleware/pkg/cookie"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithSecret sets the secret the cookie key is derived from.
// It must be at least 32 characters long.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		m.config.Secret = secret
	}
}

// WithKey sets a pre-derived 32-byte key, bypassing key derivation.
func WithKey(key []byte) Option {
	return func(m *Manager) {
		m.key = key
	}
}

// WithCodec sets a ready codec; secret and key are then ignored.
func WithCodec(codec *Codec) Option {
	return func(m *Manager) {
		m.codec = codec
	}
}

// WithStorage keeps session data server side. Without it sessions are stateless.
func WithStorage(storage Storage) Option {
	return func(m *Manager) {
		m.storage = storage
	}
}

// WithDuration bounds session lifetime and enables the cookie Max-Age.
func WithDuration(absolute, inactivity time.Duration) Option {
	return func(m *Manager) {
		m.duration = &Duration{Absolute: absolute, Inactivity: inactivity}
	}
}

// WithCookieName sets the session cookie name
func WithCookieName(name string) Option {
	return func(m *Manager) {
		m.config.CookieName = name
	}
}

// WithCookiePath sets the session cookie path
func WithCookiePath(path string) Option {
	return func(m *Manager) {
		m.config.CookiePath = path
	}
}

// WithCookieDomain sets the session cookie domain
func WithCookieDomain(domain string) Option {
	return func(m *Manager) {
		m.config.CookieDomain = domain
	}
}

// WithSecureCookies enables the Secure flag on session cookies
func WithSecureCookies(secure bool) Option {
	return func(m *Manager) {
		m.config.SecureCookies = secure
	}
}

// WithCookieManager sets the cookie manager for the default cookie transport.
// Options are applied on every session cookie write.
func WithCookieManager(cookieMgr *cookie.Manager, opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookieManager = cookieMgr
		m.cookieOptions = opts
	}
}

// WithTokenHeader makes the default transport accept and issue the token in
// the named header as well as in the cookie.
func WithTokenHeader(name string) Option {
	return func(m *Manager) {
		m.config.HeaderName = name
	}
}

// WithTransport sets a custom session transport
func WithTransport(transport Transport) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

// WithHooks sets the transition hooks
func WithHooks(hooks Hooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithLogger sets the logger used for discarded tokens and background failures
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.logger = log
		}
	}
}

// WithScheduler runs storage writes through s instead of inline.
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) {
		m.scheduler = s
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
