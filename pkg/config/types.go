// Package config provides run configuration for logframe: built-in
// defaults, an optional YAML file, LOGFRAME_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"time"

	"github.com/ccollicutt/logframe/pkg/dateparse"
	"github.com/ccollicutt/logframe/pkg/detector"
	"github.com/ccollicutt/logframe/pkg/webhook"
)

// Config is the resolved configuration of a run.
type Config struct {
	// SampleSize is the number of non-blank lines inference examines.
	SampleSize int `mapstructure:"sample_size" yaml:"sample_size"`

	// Confidence is the fraction of sampled values that must pass a type
	// test for a position to be assigned.
	Confidence float64 `mapstructure:"confidence" yaml:"confidence"`

	// Candidates are the delimiter pairs tried, in preference order.
	Candidates []string `mapstructure:"candidates" yaml:"candidates"`

	// DateLayouts replaces the built-in date layouts when non-empty.
	// Values are Go time layouts; UNIX_SECONDS and UNIX_MILLIS are accepted.
	DateLayouts []string `mapstructure:"date_layouts" yaml:"date_layouts,omitempty"`

	ProgressInterval int `mapstructure:"progress_interval" yaml:"progress_interval"`

	// Output is the report format: text or json.
	Output string `mapstructure:"output" yaml:"output"`

	// Schema is a schema file to use instead of inference.
	Schema string `mapstructure:"schema" yaml:"schema,omitempty"`

	// ExportDSN receives the parsed records when set. ${VAR} and $VAR are
	// expanded from the environment.
	ExportDSN string `mapstructure:"export_dsn" yaml:"export_dsn,omitempty"`

	// MetricsFile receives run counters in Prometheus text format when set.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file,omitempty"`

	// Strict makes field warnings change the exit code.
	Strict bool `mapstructure:"strict" yaml:"strict"`

	// MaxGap reports silent periods longer than this; zero disables it.
	MaxGap time.Duration `mapstructure:"max_gap" yaml:"max_gap,omitempty"`

	// TopN bounds the modules and codes listed in a report.
	TopN int `mapstructure:"top_n" yaml:"top_n"`

	// WebhookURL receives the report as JSON when set.
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url,omitempty"`

	// WebhookToken is sent as a bearer token. ${VAR} and $VAR are expanded.
	WebhookToken string `mapstructure:"webhook_token" yaml:"webhook_token,omitempty"`

	// WebhookTrigger is always, warnings or never.
	WebhookTrigger string `mapstructure:"webhook_trigger" yaml:"webhook_trigger,omitempty"`

	// WebhookRetries is the number of extra delivery attempts.
	WebhookRetries int `mapstructure:"webhook_retries" yaml:"webhook_retries,omitempty"`

	candidates []detector.Delimiters
}

// DelimiterCandidates returns the parsed candidate pairs (populated during
// validation).
func (c *Config) DelimiterCandidates() []detector.Delimiters {
	return c.candidates
}

// DateParser returns the date collaborator for the configured layouts.
func (c *Config) DateParser() *dateparse.LayoutParser {
	return dateparse.New(c.DateLayouts...)
}

// DetectorOptions returns the inference options the configuration implies.
func (c *Config) DetectorOptions() []detector.Option {
	return []detector.Option{
		detector.WithSampleSize(c.SampleSize),
		detector.WithConfidence(c.Confidence),
		detector.WithCandidates(c.candidates...),
		detector.WithDateParser(c.DateParser()),
	}
}

// Webhook returns the delivery trigger and options. The trigger is never
// when no URL is configured.
func (c *Config) Webhook() (webhook.Trigger, webhook.SendOptions) {
	if c.WebhookURL == "" {
		return webhook.TriggerNever, webhook.SendOptions{}
	}
	trigger, err := webhook.ParseTrigger(c.WebhookTrigger)
	if err != nil {
		return webhook.TriggerNever, webhook.SendOptions{}
	}
	return trigger, webhook.SendOptions{
		URL:     c.WebhookURL,
		Token:   c.WebhookToken,
		Retries: c.WebhookRetries,
	}
}
