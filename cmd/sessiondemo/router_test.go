package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/middleware/pkg/session"
)

func newTestServer(t *testing.T, opts ...session.Option) http.Handler {
	t.Helper()
	m, err := session.New(append([]session.Option{session.WithSecret("demo-secret-demo-secret-demo-secret")}, opts...)...)
	require.NoError(t, err)
	return newRouter(m, slog.New(slog.DiscardHandler), nil)
}

func do(t *testing.T, h http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	return nil
}

func TestVisitCounter(t *testing.T) {
	h := newTestServer(t, session.WithStorage(session.NewMemoryStorage(0)))

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookie(rec)
	require.NotNil(t, c)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/", nil), c)
	var body struct {
		SessionID string `json:"session_id"`
		Visits    int    `json:"visits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Visits)
	assert.NotEmpty(t, body.SessionID)
}

func TestLoginFlow(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	anonymous := sessionCookie(rec)
	require.NotNil(t, anonymous)

	form := url.Values{"user": {"alice"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, h, req, anonymous)
	require.Equal(t, http.StatusOK, rec.Code)
	loggedIn := sessionCookie(rec)
	require.NotNil(t, loggedIn)
	assert.NotEqual(t, anonymous.Value, loggedIn.Value)

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/me", nil), loggedIn)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"alice"}`, rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/logout", nil), loggedIn)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestLoginRotatesStoredSession(t *testing.T) {
	store := session.NewMemoryStorage(0)
	h := newTestServer(t, session.WithStorage(store))

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	anonymous := sessionCookie(rec)
	require.NotNil(t, anonymous)
	require.Equal(t, 1, store.Len())

	form := url.Values{"user": {"alice"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, h, req, anonymous)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.Len())

	// the pre-login cookie no longer resolves to a stored session
	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/me", nil), anonymous)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenHeader(t *testing.T) {
	h := newTestServer(t, session.WithTokenHeader("X-Session"))

	form := url.Values{"user": {"alice"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get("X-Session")
	require.NotEmpty(t, token)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Session", token)
	rec = do(t, h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"alice"}`, rec.Body.String())
}

func TestLoginRequiresUser(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ALIVE", rec.Body.String())

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, "ALIVE", rec.Body.String())
}
