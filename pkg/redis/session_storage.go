package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/middleware/pkg/session"
)

// SessionStorage keeps session data in Redis as JSON documents keyed by
// session id. It implements session.Storage.
type SessionStorage struct {
	db     redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ session.Storage = (*SessionStorage)(nil)

// SessionStorageOption configures SessionStorage.
type SessionStorageOption func(*SessionStorage)

// WithKeyPrefix replaces the default "session:" key prefix.
func WithKeyPrefix(prefix string) SessionStorageOption {
	return func(s *SessionStorage) {
		s.prefix = prefix
	}
}

// WithTTL sets an expiry on every stored key. Zero disables expiry.
func WithTTL(ttl time.Duration) SessionStorageOption {
	return func(s *SessionStorage) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

func NewSessionStorage(client redis.UniversalClient, opts ...SessionStorageOption) *SessionStorage {
	s := &SessionStorage{
		db:     client,
		prefix: "session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSessionStorageFromConfig applies SessionPrefix and SessionTTL from cfg.
func NewSessionStorageFromConfig(client redis.UniversalClient, cfg Config, opts ...SessionStorageOption) *SessionStorage {
	configOpts := []SessionStorageOption{WithKeyPrefix(cfg.SessionPrefix), WithTTL(cfg.SessionTTL)}
	return NewSessionStorage(client, append(configOpts, opts...)...)
}

// Get returns (nil, nil) for unknown ids.
func (s *SessionStorage) Get(ctx context.Context, sid string) (session.Data, error) {
	if sid == "" {
		return nil, nil
	}

	raw, err := s.db.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data := session.Data{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Join(ErrDecodeSession, err)
	}
	return data, nil
}

func (s *SessionStorage) Set(ctx context.Context, sid string, data session.Data) error {
	if data == nil {
		data = session.Data{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Join(ErrEncodeSession, err)
	}

	return s.db.Set(ctx, s.key(sid), raw, s.ttl).Err()
}

func (s *SessionStorage) Delete(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.db.Del(ctx, s.key(sid)).Err()
}

func (s *SessionStorage) key(sid string) string {
	return s.prefix + sid
}
