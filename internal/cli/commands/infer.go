package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logframe/pkg/detector"
	"github.com/ccollicutt/logframe/pkg/schema"
)

// InferOptions holds command-line options for the infer command.
type InferOptions struct {
	ShowAll     bool
	WriteSchema string
}

// NewInferCommand creates the infer command.
func NewInferCommand() *cobra.Command {
	opts := &InferOptions{}

	cmd := &cobra.Command{
		Use:   "infer <log-file>",
		Short: "Infer the header schema of a log file",
		Long: `Sample the head of a log file and infer its header schema: the
delimiter pair around header tokens and the position of the level, date,
module and code tokens.

Prints the schema, the type found at each token position with its
confidence, and a schema file that can be passed to 'logframe parse --schema'.

Optionally writes that schema file with --write-schema.

Example:
  logframe infer /var/log/app.log
  logframe infer --sample 500 /var/log/large.log.gz
  logframe infer -w app.schema.yaml /var/log/app.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(cmd, args, opts)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text|json)")
	addInferenceFlags(cmd)
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show every delimiter candidate, not just the winner")
	cmd.Flags().StringVarP(&opts.WriteSchema, "write-schema", "w", "", "Write the schema to a file (will not overwrite)")

	return cmd
}

func runInfer(cmd *cobra.Command, args []string, opts *InferOptions) error {
	logFile := args[0]
	ctx := commandContext(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	d := detector.New(cfg.DetectorOptions()...)
	result, detectErr := d.DetectFromFile(ctx, logFile)

	var inferErr *detector.InferenceError
	if detectErr != nil && !errors.As(detectErr, &inferErr) {
		return fmt.Errorf("inference failed: %w", detectErr)
	}

	if detectErr == nil && opts.WriteSchema != "" {
		if err := schema.Save(opts.WriteSchema, result.Schema); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote schema to: %s\n", opts.WriteSchema)
	}

	out := cmd.OutOrStdout()
	var outErr error
	switch cfg.Output {
	case "json":
		outErr = outputInferJSON(out, result, logFile, inferErr, opts)
	default:
		outErr = outputInferText(out, result, logFile, inferErr, opts)
	}
	if outErr != nil {
		return outErr
	}

	if detectErr != nil {
		return fmt.Errorf("inference failed: %w", detectErr)
	}
	return nil
}

func outputInferText(w io.Writer, result *detector.DetectionResult, logFile string, inferErr *detector.InferenceError, opts *InferOptions) error {
	fmt.Fprintln(w, "=== Header Schema Inference ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	if result.HasSchema() {
		fmt.Fprintf(w, "Header lines: %d\n", result.HeaderLines)
	}
	fmt.Fprintln(w)

	if inferErr != nil {
		fmt.Fprintln(w, "No header schema detected.")
		fmt.Fprintf(w, "Reason: %s\n", inferErr.Reason)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: header tokens must be wrapped in one of the candidate delimiter")
		fmt.Fprintln(w, "pairs and repeat on most header lines. Try --candidates or a larger --sample.")
		fmt.Fprintln(w)
		if opts.ShowAll {
			writeCandidates(w, result.Candidates)
		}
		return nil
	}

	fmt.Fprintf(w, "Schema: %s\n", result.Schema)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Positions:")
	for _, p := range result.Positions {
		typ := "-"
		conf := ""
		if p.Type != "" {
			typ = string(p.Type)
			conf = fmt.Sprintf("%.1f%%", p.Confidence*100)
		}
		fmt.Fprintf(w, "  %2d  %-7s %6s  %s\n", p.Ordinal, typ, conf, truncate(p.Sample, 60))
	}
	fmt.Fprintln(w)

	data, err := yaml.Marshal(result.Schema)
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	fmt.Fprintln(w, "--- Schema file (save with --write-schema) ---")
	fmt.Fprintln(w)
	fmt.Fprint(w, string(data))
	fmt.Fprintln(w)

	if opts.ShowAll && len(result.Candidates) > 1 {
		writeCandidates(w, result.Candidates)
	}
	return nil
}

func writeCandidates(w io.Writer, candidates []detector.CandidateScore) {
	fmt.Fprintln(w, "--- Delimiter candidates ---")
	for i, c := range candidates {
		stable := "unstable"
		if c.Stable {
			stable = "stable"
		}
		fmt.Fprintf(w, "%d. %s width=%d support=%d mass=%d lines=%d %s\n",
			i+1, c.Delimiters, c.Width, c.Support, c.Mass, c.TokenLines, stable)
	}
	fmt.Fprintln(w)
}

// JSONPosition represents one token position in JSON output.
type JSONPosition struct {
	Ordinal    int     `json:"ordinal"`
	Type       string  `json:"type,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Sample     string  `json:"sample"`
}

// JSONCandidate represents one delimiter candidate in JSON output.
type JSONCandidate struct {
	Delimiters string `json:"delimiters"`
	Width      int    `json:"width"`
	Support    int    `json:"support"`
	Mass       int    `json:"mass"`
	TokenLines int    `json:"token_lines"`
	Stable     bool   `json:"stable"`
}

// InferJSON represents the full JSON output of the infer command.
type InferJSON struct {
	File         string          `json:"file"`
	Schema       string          `json:"schema,omitempty"`
	Delimiters   string          `json:"delimiters,omitempty"`
	Fields       map[string]int  `json:"fields,omitempty"`
	Positions    []JSONPosition  `json:"positions"`
	Candidates   []JSONCandidate `json:"candidates"`
	SampledLines int             `json:"sampled_lines"`
	HeaderLines  int             `json:"header_lines"`
	Error        string          `json:"error,omitempty"`
}

func outputInferJSON(w io.Writer, result *detector.DetectionResult, logFile string, inferErr *detector.InferenceError, opts *InferOptions) error {
	output := InferJSON{
		File:         logFile,
		SampledLines: result.SampledLines,
		HeaderLines:  result.HeaderLines,
		Positions:    make([]JSONPosition, 0, len(result.Positions)),
		Candidates:   make([]JSONCandidate, 0),
	}
	if inferErr != nil {
		output.Error = inferErr.Reason
	}

	if result.HasSchema() {
		s := result.Schema
		output.Schema = s.String()
		output.Delimiters = string(s.Open()) + string(s.Close())
		output.Fields = make(map[string]int)
		for t, pos := range s.Positions() {
			output.Fields[string(t)] = pos
		}
	}

	for _, p := range result.Positions {
		output.Positions = append(output.Positions, JSONPosition{
			Ordinal:    p.Ordinal,
			Type:       string(p.Type),
			Confidence: p.Confidence,
			Sample:     p.Sample,
		})
	}

	candidates := result.Candidates
	if !opts.ShowAll && len(candidates) > 1 {
		candidates = candidates[:1] // Only show the winner
	}
	for _, c := range candidates {
		output.Candidates = append(output.Candidates, JSONCandidate{
			Delimiters: c.Delimiters.String(),
			Width:      c.Width,
			Support:    c.Support,
			Mass:       c.Mass,
			TokenLines: c.TokenLines,
			Stable:     c.Stable,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
