package session

import "github.com/dmitrymomot/middleware/pkg/cookie"

// Config holds session configuration
type Config struct {
	// CookieName is the name of the session cookie (default: "sid")
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	CookiePath   string `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieDomain string `env:"SESSION_COOKIE_DOMAIN" envDefault:""`

	// SecureCookies enables the Secure flag on session cookies (recommended for production)
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`

	// HeaderName, when set, also accepts and issues the token in this
	// request/response header alongside the cookie
	HeaderName string `env:"SESSION_HEADER_NAME" envDefault:""`

	// Secret derives the cookie encryption key; at least 32 characters
	Secret string `env:"SESSION_SECRET"`

	// Duration is disabled when Absolute is zero
	Duration Duration `envPrefix:"SESSION_DURATION_"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName: "sid",
		CookiePath: "/",
	}
}

func (c Config) duration() *Duration {
	if c.Duration.Absolute == 0 && c.Duration.Inactivity == 0 {
		return nil
	}
	d := c.Duration
	return &d
}

func (c Config) cookieOptions() []cookie.Option {
	var opts []cookie.Option
	if c.CookiePath != "" {
		opts = append(opts, cookie.WithPath(c.CookiePath))
	}
	if c.CookieDomain != "" {
		opts = append(opts, cookie.WithDomain(c.CookieDomain))
	}
	if c.SecureCookies {
		opts = append(opts, cookie.WithSecure(true))
	}
	return opts
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
