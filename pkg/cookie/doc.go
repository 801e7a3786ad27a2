// Package cookie writes, reads and deletes HTTP cookies with secure
// defaults shared by every cookie a Manager issues.
//
// Defaults are Path "/", HttpOnly and SameSite=Lax. Per-call options
// override them without mutating the Manager. Values are written verbatim:
// confidentiality and integrity are the caller's job (the session package
// stores an encrypted token here).
//
// # Usage
//
//	import "github.com/dmitrymomot/middleware/pkg/cookie"
//
//	mgr := cookie.New(cookie.WithSecure(true))
//
//	_ = mgr.Set(w, "sid", token, cookie.WithMaxAge(3600))
//	value, err := mgr.Get(r, "sid")
//	mgr.Delete(w, "sid") // Max-Age=0
//
// # Configuration
//
// Config can be populated from environment variables (COOKIE_PATH,
// COOKIE_DOMAIN, COOKIE_SECURE, COOKIE_HTTP_ONLY, COOKIE_SAME_SITE) and
// turned into a Manager with NewFromConfig.
//
// # Errors
//
//   - ErrCookieNotFound – the request carries no such cookie, or it is empty
//   - ErrInvalidName    – empty cookie name
//   - ErrValueTooLong   – value would exceed the browser cookie size limit
package cookie
