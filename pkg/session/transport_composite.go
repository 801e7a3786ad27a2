package session

import (
	"errors"
	"net/http"
)

// CompositeTransport reads the token from the first transport that carries
// one and writes it through all of them, so browsers and API clients can
// share a Manager.
type CompositeTransport struct {
	transports []Transport
}

// NewCompositeTransport creates a composite transport that tries the
// transports in order.
func NewCompositeTransport(transports ...Transport) *CompositeTransport {
	return &CompositeTransport{
		transports: transports,
	}
}

// GetToken returns the token from the first transport that has one.
func (t *CompositeTransport) GetToken(r *http.Request) (string, error) {
	for _, transport := range t.transports {
		token, err := transport.GetToken(r)
		if err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrTokenNotFound
}

// SetToken sends the token through every transport.
func (t *CompositeTransport) SetToken(w http.ResponseWriter, token Sealed) error {
	var errs []error
	for _, transport := range t.transports {
		if err := transport.SetToken(w, token); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearToken clears the token on every transport.
func (t *CompositeTransport) ClearToken(w http.ResponseWriter) error {
	var errs []error
	for _, transport := range t.transports {
		if err := transport.ClearToken(w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
