package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces the process environment, e.g. VECTORIZE_DATA_DIR.
const EnvPrefix = "vectorize"

// Env holds the overrides read from the environment. Unset variables leave
// the corresponding field empty.
type Env struct {
	DataDir   string `envconfig:"DATA_DIR"`
	Store     string `envconfig:"STORE"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`
	Seed      *int64 `envconfig:"SEED"`
	MaxSize   *int   `envconfig:"MAX_SIZE"`
}

func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, fmt.Errorf("read environment: %w", err)
	}
	return env, nil
}

// Apply overlays the set fields of e onto c.
func (e Env) Apply(c *Config) {
	if e.DataDir != "" {
		c.Run.DataDir = e.DataDir
	}
	if e.Store != "" {
		c.Run.Store = e.Store
	}
	if e.LogLevel != "" {
		c.Run.LogLevel = e.LogLevel
	}
	if e.LogFormat != "" {
		c.Run.LogFormat = e.LogFormat
	}
	if e.Seed != nil {
		c.Run.Seed = *e.Seed
	}
	if e.MaxSize != nil {
		c.Image.MaxSize = *e.MaxSize
	}
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
	return l, nil
}

// NewLogger builds the process logger from the run section.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: l}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("%w: log format %q", ErrInvalid, format)
}
