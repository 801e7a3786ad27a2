package session

import "errors"

var (
	// ErrSessionNotInitialised indicates Data was read before Get or Update ran
	ErrSessionNotInitialised = errors.New("session.not_initialised")

	// ErrSessionDestroyed indicates the session was deleted during this request
	ErrSessionDestroyed = errors.New("session.destroyed")

	// ErrRefreshFailed wraps errors returned by a RefreshFunc
	ErrRefreshFailed = errors.New("session.refresh_failed")

	// ErrInvalidToken indicates the cookie token could not be opened or validated
	ErrInvalidToken = errors.New("session.invalid_token")

	// ErrTokenGeneration indicates sealing a payload failed
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrTokenNotFound indicates the request carries no session token
	ErrTokenNotFound = errors.New("session.token_not_found")

	// ErrInvalidDuration indicates an inactivity window without an absolute lifetime
	ErrInvalidDuration = errors.New("session.invalid_duration")

	// ErrNoCodec indicates neither a secret nor a key was configured
	ErrNoCodec = errors.New("session.no_codec")

	// ErrAlreadyPersisted indicates Persist was called more than once
	ErrAlreadyPersisted = errors.New("session.already_persisted")

	// ErrStorage wraps failures of the configured Storage
	ErrStorage = errors.New("session.storage_failed")
)
