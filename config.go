package debounce

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the debouncer timing configuration.
// Designed for environment-based configuration using popular env parsing libraries.
type Config struct {
	// Delay is the trailing debounce interval; every call pushes execution
	// back by this much.
	Delay time.Duration `env:"DEBOUNCE_DELAY" envDefault:"250ms"`

	// MaxWait bounds the latency from the first call in a window to forced
	// execution. Zero disables the ceiling.
	MaxWait time.Duration `env:"DEBOUNCE_MAX_WAIT" envDefault:"0"`
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig() Config {
	return Config{
		Delay:   250 * time.Millisecond,
		MaxWait: 0,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.Delay <= 0 {
		return ErrInvalidDelay
	}
	if c.MaxWait < 0 {
		return ErrInvalidMaxWait
	}
	return nil
}

var loadEnvOnce sync.Once

// LoadConfig loads Config from environment variables. A .env file in the
// working directory is loaded once per process before parsing, matching the
// usual application startup flow.
func LoadConfig() (Config, error) {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load() // Missing .env files are fine; the environment wins anyway
	})
	return env.ParseAs[Config]()
}

// NewFromConfig creates a Debouncer from configuration. Zero config values
// fall back to defaults; additional options override config values.
func NewFromConfig[T, R any](op Operation[T, R], cfg Config, opts ...Option) (*Debouncer[T, R], error) {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultConfig().Delay
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	allOpts := append([]Option{WithMaxWait(cfg.MaxWait)}, opts...)
	return New(op, cfg.Delay, allOpts...)
}
