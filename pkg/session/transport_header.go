package session

import (
	"net/http"
	"strconv"
	"strings"
)

// HeaderTransport implements Transport using HTTP headers, for API
// clients that cannot hold cookies.
type HeaderTransport struct {
	headerName string
	prefix     string
}

// HeaderOption is a functional option for HeaderTransport
type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets a custom prefix for the header value
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) {
		t.prefix = prefix
	}
}

// NewHeaderTransport creates a new header-based transport
func NewHeaderTransport(headerName string, opts ...HeaderOption) *HeaderTransport {
	t := &HeaderTransport{
		headerName: headerName,
		prefix:     "Bearer ",
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// GetToken extracts the session token from the request header
func (t *HeaderTransport) GetToken(r *http.Request) (string, error) {
	value := r.Header.Get(t.headerName)
	if t.prefix != "" {
		value = strings.TrimPrefix(value, t.prefix)
	}
	if value == "" {
		return "", ErrTokenNotFound
	}
	return value, nil
}

// SetToken sends the session token in the response header. The token
// lifetime, when it has one, is echoed in "<header>-Max-Age".
func (t *HeaderTransport) SetToken(w http.ResponseWriter, token Sealed) error {
	w.Header().Set(t.headerName, t.prefix+token.Token)

	if token.HasMaxAge {
		w.Header().Set(t.headerName+"-Max-Age", strconv.Itoa(max(0, token.MaxAge)))
	} else {
		w.Header().Del(t.headerName + "-Max-Age")
	}

	return nil
}

// ClearToken sends an empty token with a zero max age so the client knows
// to forget the session.
func (t *HeaderTransport) ClearToken(w http.ResponseWriter) error {
	w.Header().Set(t.headerName, "")
	w.Header().Set(t.headerName+"-Max-Age", "0")
	return nil
}
