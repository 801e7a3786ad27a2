package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"

	"github.com/dmitrymomot/middleware/pkg/secrets"
)

// Sealed is an encrypted cookie token ready to be written.
// MaxAge is the remaining lifetime in seconds and is only meaningful when
// HasMaxAge is set; a zero MaxAge then tells the client to drop the token.
type Sealed struct {
	Token     string
	MaxAge    int
	HasMaxAge bool
}

// Decrypted is the outcome of opening a cookie token.
// Expired tokens keep their Payload so the caller can decide whether to refresh.
type Decrypted struct {
	Payload *Payload
	Expired bool
}

// Codec seals and opens session payloads as compact JWE tokens using
// direct key agreement and A256GCM content encryption.
type Codec struct {
	key []byte
	now func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithCodecClock overrides the time source used for iat, exp and expiry checks.
func WithCodecClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec derives the content-encryption key from secret.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	key, err := secrets.DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	return newCodec(key, opts), nil
}

// NewCodecWithKey uses a pre-derived 32-byte key as is.
func NewCodecWithKey(key []byte, opts ...CodecOption) (*Codec, error) {
	cp, err := secrets.CopyKey(key)
	if err != nil {
		return nil, err
	}
	return newCodec(cp, opts), nil
}

func newCodec(key []byte, opts []CodecOption) *Codec {
	c := &Codec{key: key, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encrypt seals p. IssuedAt defaults to now. With a duration, Expiry is
// recomputed from the expiration policy and MaxAge is derived from it;
// without one, p.Expiry is sealed unchanged.
func (c *Codec) Encrypt(p Payload, d *Duration) (Sealed, error) {
	now := c.now()
	if p.IssuedAt == 0 {
		p.IssuedAt = now.Unix()
	}

	var (
		maxAge    int
		hasMaxAge bool
	)
	if d != nil {
		hasMaxAge = true
		exp := CalculateExpiration(time.Unix(p.IssuedAt, 0), now, *d).Unix()
		if exp < p.IssuedAt {
			exp = p.IssuedAt
		}
		p.Expiry = exp
		maxAge = int(max(0, exp-now.Unix()))
	}

	plaintext, err := json.Marshal(p)
	if err != nil {
		return Sealed{}, errors.Join(ErrTokenGeneration, err)
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: c.key},
		(&jose.EncrypterOptions{}).WithType("JWT"),
	)
	if err != nil {
		return Sealed{}, errors.Join(ErrTokenGeneration, err)
	}

	jwe, err := encrypter.Encrypt(plaintext)
	if err != nil {
		return Sealed{}, errors.Join(ErrTokenGeneration, err)
	}

	token, err := jwe.CompactSerialize()
	if err != nil {
		return Sealed{}, errors.Join(ErrTokenGeneration, err)
	}

	return Sealed{Token: token, MaxAge: maxAge, HasMaxAge: hasMaxAge}, nil
}

// Decrypt opens token. Every failure other than expiry is reported as an
// error wrapping ErrInvalidToken with a zero Decrypted.
func (c *Codec) Decrypt(token string) (Decrypted, error) {
	if token == "" {
		return Decrypted{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	jwe, err := jose.ParseEncrypted(token, []jose.KeyAlgorithm{jose.DIRECT}, []jose.ContentEncryption{jose.A256GCM})
	if err != nil {
		return Decrypted{}, fmt.Errorf("%w: parse: %w", ErrInvalidToken, err)
	}

	plaintext, err := jwe.Decrypt(c.key)
	if err != nil {
		return Decrypted{}, fmt.Errorf("%w: decrypt: %w", ErrInvalidToken, err)
	}

	var p Payload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return Decrypted{}, fmt.Errorf("%w: claims: %w", ErrInvalidToken, err)
	}

	if p.SessionID == "" {
		return Decrypted{}, fmt.Errorf("%w: missing %q claim", ErrInvalidToken, claimSessionID)
	}
	if p.Expiry != 0 && p.IssuedAt > p.Expiry {
		return Decrypted{}, fmt.Errorf("%w: %q after %q", ErrInvalidToken, claimIssuedAt, claimExpiry)
	}

	if p.Expiry != 0 && p.Expiry <= c.now().Unix() {
		return Decrypted{Payload: &p, Expired: true}, nil
	}

	return Decrypted{Payload: &p}, nil
}
