// Package secrets derives and validates the symmetric keys used to seal
// session cookies.
//
// A key is derived from an application secret with HKDF-SHA-256 using a
// fixed info string, producing exactly 32 bytes (256 bits) suitable for
// A256GCM content encryption. Callers that manage keys themselves can skip
// derivation and pass a 32-byte key directly; ValidateKey and CopyKey check
// and copy such keys.
//
// # Usage
//
//	import "github.com/dmitrymomot/middleware/pkg/secrets"
//
//	key, err := secrets.DeriveKey(os.Getenv("SESSION_SECRET"))
//	if err != nil {
//	    // secret is missing or shorter than 32 characters
//	}
//
//	// or generate a random key once and store it securely
//	raw, _ := secrets.GenerateKey()
//
// # Error Handling
//
// Validation failures are reported with ErrMissingSecret, ErrSecretTooShort
// and ErrInvalidKey. Use errors.Is to match them.
package secrets
