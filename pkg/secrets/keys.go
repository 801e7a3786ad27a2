package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the size of a derived content-encryption key
	KeySize = 32 // 256 bits for A256GCM

	// MinSecretLength is the minimum number of characters accepted for a secret
	MinSecretLength = 32

	// keyInfo is used for HKDF key derivation to provide domain separation
	keyInfo = "session-cookie-cek-v1"
)

// ValidateSecret checks that a secret string is present and long enough
// to derive a key from.
func ValidateSecret(secret string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	if len(secret) < MinSecretLength {
		return fmt.Errorf("%w: got %d chars, need at least %d", ErrSecretTooShort, len(secret), MinSecretLength)
	}
	return nil
}

// ValidateKey checks that a pre-derived key has the correct length.
func ValidateKey(key []byte) error {
	if len(key) != KeySize {
		return ErrInvalidKey
	}
	return nil
}

// DeriveKey derives a 32-byte key from the secret using HKDF-SHA-256.
// The same secret always yields the same key, so cookies issued by one
// process can be opened by every other process sharing the secret.
func DeriveKey(secret string) ([]byte, error) {
	if err := ValidateSecret(secret); err != nil {
		return nil, err
	}

	hkdfReader := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdfReader, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}

	return key, nil
}

// CopyKey returns a validated private copy of key so that callers can
// wipe their buffer without affecting the holder.
func CopyKey(key []byte) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	out := make([]byte, KeySize)
	copy(out, key)
	return out, nil
}

// ClearBytes zeros out a byte slice holding key material.
func ClearBytes(b []byte) {
	clear(b)
}

// GenerateKey creates a new random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
