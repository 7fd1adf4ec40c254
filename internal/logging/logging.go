// Package logging configures the diagnostic logger that logframe writes to
// stderr. Reports go to stdout; everything here is for the operator.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config selects the logger's verbosity and encoding.
type Config struct {
	Level  string `env:"LOGFRAME_LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOGFRAME_LOG_FORMAT" envDefault:"text"`
}

// LoadConfig reads the logger configuration from the environment, after
// loading a .env file from the working directory if one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("reading logging environment: %w", err)
	}
	return cfg, nil
}

// New builds a logger writing to w.
func New(cfg *Config, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("LOGFRAME_LOG_LEVEL: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	default:
		return nil, fmt.Errorf("LOGFRAME_LOG_FORMAT: unknown format %q (must be text or json)", cfg.Format)
	}

	return logger, nil
}

// Setup loads the configuration and builds the logger in one step.
func Setup(w io.Writer) (*logrus.Logger, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg, w)
}
