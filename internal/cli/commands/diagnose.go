package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logframe/pkg/dateparse"
	"github.com/ccollicutt/logframe/pkg/detector"
	"github.com/ccollicutt/logframe/pkg/parser"
	"github.com/ccollicutt/logframe/pkg/record"
	"github.com/ccollicutt/logframe/pkg/schema"
	"github.com/ccollicutt/logframe/pkg/source"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <log-file>",
		Short: "Diagnose why a log file does not parse as expected",
		Long: `Diagnose common problems with a log file.

This command checks:
- The file exists, is readable and whether it is gzip-compressed
- A header schema can be inferred (or the --schema file loads)
- Lines in the head of the file are recognized as headers
- Header levels and dates can be typed

Example:
  logframe diagnose /var/log/app.log
  logframe diagnose --schema app.schema.yaml -v /var/log/app.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			results := runDiagnose(commandContext(cmd), args[0], cfg.Schema, cfg.SampleSize, detector.New(cfg.DetectorOptions()...), cfg.DateParser())
			printDiagnostics(cmd.OutOrStdout(), results, opts)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().String("schema", "", "Schema file to check instead of inference")
	addInferenceFlags(cmd)

	return cmd
}

func runDiagnose(ctx context.Context, logFile, schemaFile string, sampleSize int, d *detector.Detector, dates dateparse.Parser) []DiagnosticResult {
	results := []DiagnosticResult{}

	// 1. Check the log file
	result := checkLogFile(logFile)
	results = append(results, result)
	if result.Status == "error" {
		return results
	}

	// 2. Resolve the schema
	s, result := checkSchema(ctx, logFile, schemaFile, d)
	results = append(results, result)
	if s == nil {
		return results
	}

	lines, err := source.Head(logFile, sampleSize)
	if err != nil {
		return append(results, DiagnosticResult{
			Check:   "Header Test",
			Status:  "error",
			Message: fmt.Sprintf("Cannot read file: %v", err),
		})
	}

	// 3. Check header recognition
	results = append(results, checkHeaders(lines, s))

	// 4. Check field typing
	results = append(results, checkFields(lines, s, dates))

	return results
}

func checkLogFile(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Log File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Log file not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access log file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		result.Suggests = []string{"Use 'logframe parse <dir>' to parse every file in a directory"}
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Log file is empty"
		return result
	}

	f, err := source.Open(path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot open log file: %v", err)
		return result
	}
	defer f.Close()

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	if f.Compressed() {
		result.Details = []string{"gzip-compressed"}
	}
	return result
}

func checkSchema(ctx context.Context, logFile, schemaFile string, d *detector.Detector) (*schema.Schema, DiagnosticResult) {
	if schemaFile != "" {
		result := DiagnosticResult{Check: "Schema File"}
		s, err := schema.Load(schemaFile)
		if err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Failed to load schema: %v", err)
			if strings.Contains(err.Error(), "yaml") {
				result.Suggests = []string{
					"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
				}
			}
			result.Suggests = append(result.Suggests,
				"Use 'logframe infer "+logFile+" -w <schema-file>' to generate a schema")
			return nil, result
		}
		result.Status = "ok"
		result.Message = fmt.Sprintf("Loaded: %s", s)
		return s, result
	}

	result := DiagnosticResult{Check: "Schema Inference"}
	detection, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Inference failed: %v", err)

		var inferErr *detector.InferenceError
		if errors.As(err, &inferErr) {
			result.Suggests = []string{
				"Header tokens must be wrapped in delimiters such as [] <> () {}",
				"Use --candidates to try other delimiter pairs",
				"Use --sample to examine more lines",
			}
			if best := detection.BestCandidate(); best != nil {
				result.Details = append(result.Details,
					fmt.Sprintf("Best candidate: %s (width %d on %d line(s))", best.Delimiters, best.Width, best.Support))
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Inferred: %s", detection.Schema)
	for _, p := range detection.Positions {
		if p.Type == "" {
			continue
		}
		result.Details = append(result.Details,
			fmt.Sprintf("token %d: %s (%.0f%%) e.g. %s", p.Ordinal, p.Type, p.Confidence*100, truncate(p.Sample, 40)))
	}
	return detection.Schema, result
}

func checkHeaders(lines []string, s *schema.Schema) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Header Test",
	}

	p := parser.New(s)
	headers := 0
	leading := -1
	var sampleFail string
	for i, line := range lines {
		if p.IsHeader(line) {
			headers++
			if leading < 0 {
				leading = i
			}
		} else if sampleFail == "" {
			sampleFail = line
		}
	}

	switch {
	case headers == 0:
		result.Status = "error"
		result.Message = fmt.Sprintf("No header lines in the first %d line(s)", len(lines))
		result.Suggests = []string{
			"The whole file would parse as a single headless record",
			"Check the schema delimiters and positions against the log",
		}
	case leading > 0:
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d/%d sample lines are headers; the first %d line(s) precede any header", headers, len(lines), leading)
		result.Details = []string{"Leading lines are kept as one headless record"}
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("%d/%d sample lines are headers", headers, len(lines))
	}
	if sampleFail != "" {
		result.Details = append(result.Details, "Sample continuation line:", truncate(sampleFail, 80))
	}
	return result
}

func checkFields(lines []string, s *schema.Schema, dates dateparse.Parser) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Field Test",
	}

	p := parser.New(s)
	headers := 0
	var warnings []record.Warning
	for i, line := range lines {
		if !p.IsHeader(line) {
			continue
		}
		headers++
		r := record.New(line, i+1)
		if _, ws, err := r.AssignHeader(s, dates); err == nil {
			warnings = append(warnings, ws...)
		}
	}

	if headers == 0 {
		result.Status = "warning"
		result.Message = "No header lines to type"
		return result
	}

	if len(warnings) == 0 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("All fields typed on %d header line(s)", headers)
		return result
	}

	result.Status = "warning"
	result.Message = fmt.Sprintf("%d field warning(s) on %d header line(s)", len(warnings), headers)
	for _, w := range warnings {
		result.Details = append(result.Details, w.String())
		if len(result.Details) == 5 {
			break
		}
	}
	for _, w := range warnings {
		if w.Kind == record.WarningUnparsedDate {
			result.Suggests = []string{"Use --date-layout to add the log's date layout"}
			break
		}
	}
	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== logframe Log Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before parsing.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nThe log parses but has warnings.")
	} else {
		fmt.Fprintln(w, "\nThe log looks good!")
	}
}
