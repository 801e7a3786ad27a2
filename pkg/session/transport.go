package session

import "net/http"

// Transport defines how session tokens are transmitted between client and server
type Transport interface {
	// GetToken extracts the session token from the request
	GetToken(r *http.Request) (string, error)

	// SetToken sends the session token in the response.
	// token.HasMaxAge false means no explicit lifetime
	SetToken(w http.ResponseWriter, token Sealed) error

	// ClearToken tells the client to drop the session token
	ClearToken(w http.ResponseWriter) error
}
