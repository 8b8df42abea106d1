// Package config loads host settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings every command shares. Command-line flags
// override these values.
type Config struct {
	DB           string `env:"SOLIDARITY_DB" envDefault:"solidarity.db"`
	Params       string `env:"SOLIDARITY_PARAMS"`
	Caller       string `env:"SOLIDARITY_CALLER"`
	LogLevel     string `env:"SOLIDARITY_LOG_LEVEL" envDefault:"warn"`
	OTelEndpoint string `env:"SOLIDARITY_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"SOLIDARITY_OTEL_ENABLED" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the environment configuration with defaults applied.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelWarn, fmt.Errorf("SOLIDARITY_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
