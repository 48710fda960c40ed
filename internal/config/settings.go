package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Settings holds process-level settings read from the environment. CLI flags
// default to these values.
type Settings struct {
	Host      string `env:"DISPLAYPROXY_HOST" default:"localhost"`
	Port      int    `env:"DISPLAYPROXY_PORT" default:"8000"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// LoadSettings reads an optional .env file and then the environment.
// Variables already set in the environment are not overridden by .env.
func LoadSettings() (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var s Settings
	if err := env.Load(&s, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return &s, nil
}
