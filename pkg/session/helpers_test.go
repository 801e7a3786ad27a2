package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/middleware/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var epoch = time.Unix(1_700_000_000, 0)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *testClock {
	return &testClock{now: epoch}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type hookRecorder struct {
	mu     sync.Mutex
	events []string
	data   []session.Data
}

func (h *hookRecorder) hooks() session.Hooks {
	record := func(name string) session.HookFunc {
		return func(_ context.Context, data session.Data) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, name)
			h.data = append(h.data, data)
		}
	}
	return session.Hooks{
		OnCreate:  record("create"),
		OnUpdate:  record("update"),
		OnRefresh: record("refresh"),
		OnDelete:  record("delete"),
	}
}

func (h *hookRecorder) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

type failingStorage struct {
	err error
}

func (s failingStorage) Get(context.Context, string) (session.Data, error) { return nil, s.err }
func (s failingStorage) Set(context.Context, string, session.Data) error  { return s.err }
func (s failingStorage) Delete(context.Context, string) error             { return s.err }

type countingTransport struct {
	session.Transport
	mu   sync.Mutex
	gets int
}

func (t *countingTransport) GetToken(r *http.Request) (string, error) {
	t.mu.Lock()
	t.gets++
	t.mu.Unlock()
	return t.Transport.GetToken(r)
}

func newManager(t *testing.T, opts ...session.Option) *session.Manager {
	t.Helper()
	m, err := session.New(append([]session.Option{session.WithSecret(testSecret)}, opts...)...)
	require.NoError(t, err)
	return m
}

// seal issues a token the way a previous request would have.
func seal(t *testing.T, m *session.Manager, p session.Payload, d *session.Duration) string {
	t.Helper()
	sealed, err := m.Codec().Encrypt(p, d)
	require.NoError(t, err)
	return sealed.Token
}

func requestWithCookie(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	}
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// openCookie decrypts the session cookie written to rec.
func openCookie(t *testing.T, m *session.Manager, rec *httptest.ResponseRecorder) session.Decrypted {
	t.Helper()
	c := findCookie(rec, "sid")
	require.NotNil(t, c, "expected a session cookie")
	dec, err := m.Codec().Decrypt(c.Value)
	require.NoError(t, err)
	return dec
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func newRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil)
}
