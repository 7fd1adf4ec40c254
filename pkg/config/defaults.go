package config

import (
	"github.com/spf13/viper"
)

// Default values for configuration.
const (
	DefaultSampleSize       = 100
	DefaultConfidence       = 0.9
	DefaultProgressInterval = 100
	DefaultOutput           = "text"
	DefaultTopN             = 10
	DefaultWebhookTrigger   = "warnings"
	DefaultWebhookRetries   = 2
)

// EnvPrefix prefixes every environment override (LOGFRAME_SAMPLE_SIZE, ...).
const EnvPrefix = "LOGFRAME"

// DefaultCandidates are the delimiter pairs tried when none are configured.
var DefaultCandidates = []string{"[]", "<>", "()", "{}"}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SampleSize:       DefaultSampleSize,
		Confidence:       DefaultConfidence,
		Candidates:       append([]string(nil), DefaultCandidates...),
		ProgressInterval: DefaultProgressInterval,
		Output:           DefaultOutput,
		TopN:             DefaultTopN,
		WebhookTrigger:   DefaultWebhookTrigger,
		WebhookRetries:   DefaultWebhookRetries,
	}
}

// setDefaults registers every key with viper so that environment variables
// are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("sample_size", d.SampleSize)
	v.SetDefault("confidence", d.Confidence)
	v.SetDefault("candidates", d.Candidates)
	v.SetDefault("date_layouts", []string{})
	v.SetDefault("progress_interval", d.ProgressInterval)
	v.SetDefault("output", d.Output)
	v.SetDefault("schema", "")
	v.SetDefault("export_dsn", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("strict", false)
	v.SetDefault("max_gap", "0s")
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("webhook_url", "")
	v.SetDefault("webhook_token", "")
	v.SetDefault("webhook_trigger", d.WebhookTrigger)
	v.SetDefault("webhook_retries", d.WebhookRetries)
}
