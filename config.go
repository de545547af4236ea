package persist

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/pthm/persist/lib/encoding"
)

// Config is the operator-facing configuration, read from the environment.
type Config struct {
	// CipherKey is the token secret. Empty means a random key per process,
	// so tokens do not survive a restart.
	CipherKey string `env:"PERSIST_CIPHER_KEY"`

	Mode     encoding.Mode `env:"PERSIST_MODE"      envDefault:"encrypted"`
	LogLevel slog.Level    `env:"PERSIST_LOG_LEVEL" envDefault:"info"`
}

// LoadConfigFromEnv loads configuration from the process environment.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("persist: parse env: %w", err)
	}
	return cfg, nil
}

// ParseConfig loads configuration from the given variables instead of the
// process environment.
func ParseConfig(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("persist: parse env: %w", err)
	}
	return cfg, nil
}

// Options converts the configuration into registry options.
func (c Config) Options() []Option {
	opts := []Option{WithMode(c.Mode)}
	if c.CipherKey != "" {
		opts = append(opts, WithPassphrase(c.CipherKey))
	}
	return opts
}
