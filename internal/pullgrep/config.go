package pullgrep

import (
	"go.llib.dev/frameless/pkg/env"
	"go.llib.dev/frameless/pkg/logging"

	"go.llib.dev/lazyiter/pkg/pullio"
)

// Config holds the settings read from the environment.
// Command line flags take precedence over them.
type Config struct {
	LogLevel     logging.Level `env:"PULLGREP_LOG_LEVEL" default:"warn"`
	Metrics      bool          `env:"PULLGREP_METRICS" default:"false"`
	MaxLineBytes int           `env:"PULLGREP_MAX_LINE_BYTES"`
}

// LoadConfig reads Config from the environment.
// An unset max line size falls back to pullio.DefaultMaxLineSize.
func LoadConfig() (Config, error) {
	var c Config
	if err := env.Load(&c); err != nil {
		return Config{}, err
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = pullio.DefaultMaxLineSize
	}
	return c, nil
}
