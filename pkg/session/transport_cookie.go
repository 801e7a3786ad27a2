package session

import (
	"net/http"

	"github.com/dmitrymomot/middleware/pkg/cookie"
)

// CookieTransport implements Transport using a single HTTP cookie
type CookieTransport struct {
	cookieMgr  *cookie.Manager
	cookieName string
	options    []cookie.Option
}

// NewCookieTransport creates a new cookie-based transport.
// Options are applied on top of the manager defaults for every write.
func NewCookieTransport(cookieMgr *cookie.Manager, cookieName string, opts ...cookie.Option) *CookieTransport {
	return &CookieTransport{
		cookieMgr:  cookieMgr,
		cookieName: cookieName,
		options:    opts,
	}
}

// GetToken extracts the session token from the cookie
func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	token, err := t.cookieMgr.Get(r, t.cookieName)
	if err != nil {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// SetToken stores the session token in the cookie. A token with a lifetime
// always carries Max-Age; no seconds left is written as Max-Age=0.
func (t *CookieTransport) SetToken(w http.ResponseWriter, token Sealed) error {
	opts := make([]cookie.Option, 0, len(t.options)+1)
	opts = append(opts, t.options...)
	if token.HasMaxAge {
		maxAge := token.MaxAge
		if maxAge <= 0 {
			// net/http writes Max-Age=0 for negative values
			maxAge = -1
		}
		opts = append(opts, cookie.WithMaxAge(maxAge))
	}

	return t.cookieMgr.Set(w, t.cookieName, token.Token, opts...)
}

// ClearToken expires the session cookie with Max-Age=0
func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	t.cookieMgr.Delete(w, t.cookieName, t.options...)
	return nil
}
