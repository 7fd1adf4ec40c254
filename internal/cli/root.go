// Package cli provides the command-line interface for logframe.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logframe/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logframe",
		Short: "Split semi-structured logs into typed records",
		Long: `logframe turns a semi-structured application log into typed records.

It infers, without being told:
  - The delimiter pair around header tokens ([] <> () {})
  - Which token holds the level, date, module and code

Each record is a header line plus the continuation lines (stack traces,
wrapped messages) that follow it.

CONFIGURATION:
  Settings are read from built-in defaults, an optional YAML file (--config),
  LOGFRAME_* environment variables and command flags, in that order.
  Diagnostics go to stderr; set LOGFRAME_LOG_LEVEL and LOGFRAME_LOG_FORMAT
  (text|json) to control them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML config file")

	// Add subcommands
	rootCmd.AddCommand(commands.NewInferCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
