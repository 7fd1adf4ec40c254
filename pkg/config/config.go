package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ccollicutt/logframe/pkg/detector"
	"github.com/ccollicutt/logframe/pkg/webhook"
)

// FlagKeys maps command-line flag names to configuration keys. Only flags
// present in the set passed to Load and explicitly set by the user override
// other sources.
var FlagKeys = map[string]string{
	"sample":            "sample_size",
	"confidence":        "confidence",
	"candidates":        "candidates",
	"date-layout":       "date_layouts",
	"progress-interval": "progress_interval",
	"output":            "output",
	"schema":            "schema",
	"export":            "export_dsn",
	"metrics-file":      "metrics_file",
	"strict":            "strict",
	"max-gap":           "max_gap",
	"top":               "top_n",
	"webhook-url":       "webhook_url",
	"webhook-token":     "webhook_token",
	"webhook-trigger":   "webhook_trigger",
	"webhook-retries":   "webhook_retries",
}

// Load resolves the configuration from defaults, the YAML file at path (if
// not empty), LOGFRAME_* environment variables and the flags in fs (may be
// nil), then validates it.
func Load(_ context.Context, path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if fs != nil {
		for name, key := range FlagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ExportDSN = expandEnvVar(cfg.ExportDSN)
	cfg.WebhookToken = expandEnvVar(cfg.WebhookToken)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for errors and parses the delimiter
// candidates. Each problem is reported as "key: message".
func Validate(cfg *Config) error {
	if cfg.SampleSize <= 0 {
		return fmt.Errorf("sample_size: must be positive, got %d", cfg.SampleSize)
	}

	if cfg.Confidence <= 0 || cfg.Confidence > 1 {
		return fmt.Errorf("confidence: must be in (0, 1], got %g", cfg.Confidence)
	}

	if len(cfg.Candidates) == 0 {
		return errors.New("candidates: at least one delimiter pair is required")
	}
	cfg.candidates = cfg.candidates[:0]
	for i, c := range cfg.Candidates {
		d, err := detector.ParseDelimiters(c)
		if err != nil {
			return fmt.Errorf("candidates[%d]: %w", i, err)
		}
		cfg.candidates = append(cfg.candidates, d)
	}

	for i, l := range cfg.DateLayouts {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("date_layouts[%d]: layout is empty", i)
		}
	}

	if cfg.ProgressInterval <= 0 {
		return fmt.Errorf("progress_interval: must be positive, got %d", cfg.ProgressInterval)
	}

	switch cfg.Output {
	case "text", "json":
	default:
		return fmt.Errorf("output: invalid format %q (must be text or json)", cfg.Output)
	}

	if cfg.MaxGap < 0 {
		return fmt.Errorf("max_gap: must not be negative, got %s", cfg.MaxGap)
	}

	if cfg.TopN <= 0 {
		return fmt.Errorf("top_n: must be positive, got %d", cfg.TopN)
	}

	if cfg.Schema != "" {
		if _, err := os.Stat(cfg.Schema); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}

	if err := validateWebhook(cfg); err != nil {
		return err
	}

	return nil
}

func validateWebhook(cfg *Config) error {
	if _, err := webhook.ParseTrigger(cfg.WebhookTrigger); err != nil {
		return fmt.Errorf("webhook_trigger: %w", err)
	}

	if cfg.WebhookRetries < 0 {
		return fmt.Errorf("webhook_retries: must not be negative, got %d", cfg.WebhookRetries)
	}

	if cfg.WebhookURL == "" {
		return nil
	}
	u, err := url.Parse(cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("webhook_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook_url: must use http or https scheme, got %q", cfg.WebhookURL)
	}
	if u.Host == "" {
		return fmt.Errorf("webhook_url: missing host in %q", cfg.WebhookURL)
	}
	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
// Only a value that is entirely a variable reference is expanded, so DSNs
// containing a literal "$" are left alone.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.ContainsAny(s[1:], "$/:@ ") {
		return os.Getenv(s[1:])
	}

	return s
}
