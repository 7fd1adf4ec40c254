package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logframe/pkg/config"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig resolves the run configuration from the --config file (when the
// command inherits that flag), the environment and the command's own flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(commandContext(cmd), path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// addInferenceFlags registers the flags that tune schema inference.
func addInferenceFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("sample", "n", config.DefaultSampleSize, "Number of non-blank lines to sample")
	cmd.Flags().Float64("confidence", config.DefaultConfidence, "Fraction of sampled values a type must match")
	cmd.Flags().StringSlice("candidates", config.DefaultCandidates, "Delimiter pairs to try, in preference order")
	cmd.Flags().StringSlice("date-layout", nil, "Go time layout for dates (repeatable, replaces the built-in list)")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
