package cookie

import "errors"

var (
	ErrCookieNotFound = errors.New("cookie.not_found")
	ErrInvalidName    = errors.New("cookie.invalid_name")
	ErrValueTooLong   = errors.New("cookie.value_too_long")
)
