package logger

import (
	"log/slog"
	"strings"
)

// Config holds logger configuration
type Config struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"app"`
	// Level overrides the environment default when set (debug, info, warn, error)
	Level string `env:"LOG_LEVEL" envDefault:""`
}

// NewFromConfig creates a logger from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) *slog.Logger {
	configOpts := []Option{WithEnvironment(cfg.Env, cfg.Service)}

	if cfg.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err == nil {
			configOpts = append(configOpts, WithLevel(level))
		}
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
