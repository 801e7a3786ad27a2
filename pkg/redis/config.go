package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // ConnectionURL in the format "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`

	// SessionPrefix namespaces session keys.
	SessionPrefix string `env:"REDIS_SESSION_PREFIX" envDefault:"session:"`
	// SessionTTL expires stored sessions. Zero keeps them until deleted.
	SessionTTL time.Duration `env:"REDIS_SESSION_TTL" envDefault:"0s"`
}
