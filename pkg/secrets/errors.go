package secrets

import "errors"

var (
	// Secret validation errors
	ErrMissingSecret  = errors.New("secrets: missing secret")
	ErrSecretTooShort = errors.New("secrets: secret too short")
	ErrInvalidKey     = errors.New("secrets: invalid key: must be 32 bytes")

	// Key derivation errors
	ErrKeyDerivationFailed = errors.New("secrets: key derivation failed")
)
