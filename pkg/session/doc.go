// Package session provides encrypted, cookie-carried sessions for net/http
// applications, either stateless (data inside the cookie) or backed by a
// pluggable Storage (cookie carries only the session identity).
//
// # Architecture
//
// A Manager holds the configuration decided once per application: the
// Codec sealing tokens, the optional Storage, the lifetime Duration, the
// Transport and the Hooks. For every request it hands out a Session, the
// only object application code talks to.
//
//	┌────────┐  token   ┌───────────┐  open/seal  ┌───────┐
//	│ Client │ ───────► │ Transport │ ──────────► │ Codec │
//	└────────┘          └───────────┘             └───────┘
//	                          │
//	                          ▼
//	┌─────────────────────────────────────────────────────┐
//	│ Session (per request): Get / Update / Delete / Data │
//	└─────────────────────────────────────────────────────┘
//	                          │ Persist
//	                          ▼
//	                   ┌─────────────┐
//	                   │   Storage   │ (optional: memory, redis, …)
//	                   └─────────────┘
//
// Tokens are compact JWE strings (alg "dir", enc "A256GCM") whose claims
// always include sid and iat, and exp when a Duration is configured. The
// key is derived from a secret of at least 32 characters with HKDF, or
// supplied directly as 32 raw bytes.
//
// # Lifecycle
//
// The first call to Get, Update or Delete computes the session state and
// it is cached for the rest of the request:
//
//   - no token, an invalid token, an expired token without a refresh
//     function, or one past its absolute lifetime: a new session with a
//     fresh sid and nil data
//   - a valid token: the stored data, nothing to write back
//   - an expired token with a refresh function: the refreshed data under
//     the same sid and iat; nil from refresh starts a new session; an error
//     destroys the session and is returned to the caller
//
// Persist then writes storage and sets the cookie (new or updated
// sessions), clears the cookie with Max-Age=0 (destroyed sessions), or does
// nothing. Storage entries are only removed on an explicit Delete, even
// when Update issues a new session afterwards.
//
// # Usage
//
//	manager, err := session.New(
//	    session.WithSecret(os.Getenv("SESSION_SECRET")),
//	    session.WithDuration(time.Hour, 0),
//	)
//	if err != nil {
//	    // missing or short secret
//	}
//
//	mux.Handle("/", manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    sess := session.MustFromContext(r.Context())
//	    data, err := sess.Get(r.Context(), nil)
//	    if err != nil {
//	        http.Error(w, "session error", http.StatusInternalServerError)
//	        return
//	    }
//	    count, _ := data.GetInt("count")
//	    _ = sess.Update(r.Context(), session.Data{"count": count + 1})
//	})))
//
// Storage-backed sessions:
//
//	manager, _ := session.New(
//	    session.WithSecret(secret),
//	    session.WithStorage(session.NewMemoryStorage(time.Minute)),
//	)
//
// # Configuration
//
// Config carries env tags (SESSION_SECRET, SESSION_COOKIE_NAME,
// SESSION_COOKIE_PATH, SESSION_COOKIE_DOMAIN, SESSION_SECURE_COOKIES,
// SESSION_DURATION_ABSOLUTE, SESSION_DURATION_INACTIVITY) and is turned into
// a Manager with NewFromConfig.
//
// # Error Handling
//
//   - ErrSessionNotInitialised – Data read before Get or Update
//   - ErrSessionDestroyed      – Data or Get after Delete or a failed refresh
//   - ErrRefreshFailed         – wraps the error returned by a RefreshFunc
//   - ErrInvalidToken          – token rejected by the Codec (logged, never surfaced by Session)
//   - ErrStorage               – wraps Storage failures
//   - ErrNoCodec               – no secret or key configured
package session
