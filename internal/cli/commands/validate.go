package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logframe/pkg/parser"
	"github.com/ccollicutt/logframe/pkg/schema"
	"github.com/ccollicutt/logframe/pkg/source"
)

// validateSampleLines bounds how much of each log file validate reads.
const validateSampleLines = 100

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema-file> [log-file...]",
		Short: "Validate a schema file",
		Long: `Validate a logframe schema file without parsing any logs.

Checks:
  - YAML syntax
  - Delimiters are single, distinct characters
  - Token types are known and positions are distinct and non-negative
  - Header lines found in the given log files (warning only)`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	schemaPath := args[0]
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", schemaPath)

	s, err := schema.Load(schemaPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nSchema valid!\n")
	fmt.Fprintf(w, "  Delimiters: %c %c\n", s.Open(), s.Close())
	fmt.Fprintf(w, "  Positions:  %d\n", s.Len())

	fmt.Fprintf(w, "\nFields:\n")
	for _, t := range s.Types() {
		pos, _ := s.Position(t)
		fmt.Fprintf(w, "  %-7s token %d\n", t, pos)
	}

	if len(args) == 1 {
		return nil
	}

	// Check the schema against the given logs (warnings only)
	p := parser.New(s)
	fmt.Fprintf(w, "\nLog files:\n")
	for _, file := range args[1:] {
		lines, err := source.Head(file, validateSampleLines)
		if err != nil {
			fmt.Fprintf(w, "  - %s: Warning: %v\n", file, err)
			continue
		}

		headers := 0
		for _, line := range lines {
			if p.IsHeader(line) {
				headers++
			}
		}
		if headers == 0 {
			fmt.Fprintf(w, "  - %s: Warning: no header lines in the first %d line(s)\n", file, len(lines))
			continue
		}
		fmt.Fprintf(w, "  - %s: %d/%d header lines\n", file, headers, len(lines))
	}

	return nil
}
