package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/logframe/internal/logging"
	"github.com/ccollicutt/logframe/pkg/analyzer"
	"github.com/ccollicutt/logframe/pkg/config"
	"github.com/ccollicutt/logframe/pkg/detector"
	"github.com/ccollicutt/logframe/pkg/export"
	"github.com/ccollicutt/logframe/pkg/metrics"
	"github.com/ccollicutt/logframe/pkg/output"
	"github.com/ccollicutt/logframe/pkg/parser"
	"github.com/ccollicutt/logframe/pkg/record"
	"github.com/ccollicutt/logframe/pkg/schema"
	"github.com/ccollicutt/logframe/pkg/webhook"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	TimeRange string
	Verbose   bool
	Quiet     bool
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <log-file|glob>...",
		Short: "Parse logs into typed records and summarize them",
		Long: `Parse log files into records. Each record is a header line plus the
continuation lines (stack traces, wrapped messages) that follow it, with the
header's level, date, module and code typed.

The header schema of each file is inferred from its first lines unless
--schema names a schema file. Plain and gzip-compressed files are accepted;
directories expand to the files they contain.

Records of several files are merged into one timeline by date.

Exit codes:
  0 - Parsed successfully
  1 - Header fields could not be typed (with --strict)
  2 - Configuration, inference or read error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringP("output", "o", "text", "Output format (text|json)")
	cmd.Flags().String("schema", "", "Schema file to use instead of inference")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "List every record")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().StringVar(&opts.TimeRange, "time-range", "", "Limit the summary to records dated within this window before now (e.g., 2h, 24h)")
	cmd.Flags().Duration("max-gap", 0, "Report silent periods longer than this (e.g., 5m)")
	cmd.Flags().Int("top", config.DefaultTopN, "Number of modules and codes to list")
	cmd.Flags().Int("progress-interval", config.DefaultProgressInterval, "Records between progress messages")
	cmd.Flags().Bool("strict", false, "Exit 1 when header fields could not be typed")
	addInferenceFlags(cmd)

	// Sinks
	cmd.Flags().String("export", "", "Write records to a database (sqlite://path or postgres://...)")
	cmd.Flags().String("metrics-file", "", "Write run counters in Prometheus text format to this file")
	cmd.Flags().String("webhook-url", "", "POST the report as JSON to this URL")
	cmd.Flags().String("webhook-token", "", "Bearer token for the webhook (supports ${ENV_VAR})")
	cmd.Flags().String("webhook-trigger", config.DefaultWebhookTrigger, "When to send the webhook (always|warnings|never)")
	cmd.Flags().Int("webhook-retries", config.DefaultWebhookRetries, "Extra webhook attempts after a connection error or 5xx")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding log sources: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no log files matched patterns: %v", args)
	}

	var analyzerOpts []analyzer.Option
	if opts.TimeRange != "" {
		duration, err := time.ParseDuration(opts.TimeRange)
		if err != nil {
			return fmt.Errorf("invalid time-range %q: %w", opts.TimeRange, err)
		}
		end := time.Now()
		analyzerOpts = append(analyzerOpts, analyzer.WithTimeRange(end.Add(-duration), end))
	}
	analyzerOpts = append(analyzerOpts, analyzer.WithTopN(cfg.TopN), analyzer.WithMaxGap(cfg.MaxGap))

	log, err := logging.Setup(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}

	var fixed *schema.Schema
	if cfg.Schema != "" {
		fixed, err = schema.Load(cfg.Schema)
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}
	}

	m := metrics.New()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
				log.WithError(err).Warn("metrics not written")
			}
		}()
	}

	start := time.Now()
	run := &parseRun{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		detector: detector.New(cfg.DetectorOptions()...),
		reporter: parser.MultiReporter{logging.NewDiagnostics(log), m},
		inferred: make(map[string]bool),
	}

	logs := make([]*record.Log, 0, len(files))
	for _, file := range files {
		l, err := run.parseFile(ctx, file, fixed)
		if err != nil {
			return err
		}
		logs = append(logs, l)
	}

	summary, err := analyzer.New(analyzerOpts...).Analyze(ctx, logs...)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(summary, logs, run.inferred, opts.Verbose)
	report.Metadata = output.Metadata{
		SchemaFile: cfg.Schema,
		AnalyzedAt: start,
		Duration:   time.Since(start),
	}

	formatter, err := output.NewFormatter(cfg.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if cfg.ExportDSN != "" {
		if err := exportLogs(ctx, log, cfg.ExportDSN, logs); err != nil {
			return err
		}
	}

	sendWebhook(ctx, log, cfg, report)

	// Set exit code based on results
	if cfg.Strict && report.HasWarnings() {
		ExitCode = 1
	}

	return nil
}

// parseRun carries the collaborators shared by every file of a run.
type parseRun struct {
	cfg      *config.Config
	log      *logrus.Logger
	metrics  *metrics.RunMetrics
	detector *detector.Detector
	reporter parser.Reporter
	inferred map[string]bool
}

// parseFile infers the schema of file unless fixed is set, then parses it.
func (r *parseRun) parseFile(ctx context.Context, file string, fixed *schema.Schema) (*record.Log, error) {
	s := fixed
	if s == nil {
		result, err := r.detector.DetectFromFile(ctx, file)
		r.metrics.ObserveInference(err)
		if err != nil {
			r.metrics.ObserveFile(err)
			return nil, fmt.Errorf("inference failed: %s: %w", file, err)
		}
		s = result.Schema
		r.inferred[file] = true
		r.log.WithFields(logrus.Fields{
			"source":       file,
			"schema":       s.String(),
			"header_lines": result.HeaderLines,
		}).Info("schema inferred")
	}

	p := parser.New(s,
		parser.WithDateParser(r.cfg.DateParser()),
		parser.WithReporter(r.reporter),
		parser.WithProgressInterval(r.cfg.ProgressInterval),
	)
	l, err := p.ParseFile(ctx, file)
	r.metrics.ObserveFile(err)
	if err != nil {
		var re *parser.ReadError
		if errors.As(err, &re) && l != nil {
			r.log.WithFields(logrus.Fields{
				"source":  file,
				"line":    re.Line,
				"records": l.HeaderRecords(),
			}).Warn("read failed, partial records discarded")
		}
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	return l, nil
}

func exportLogs(ctx context.Context, log *logrus.Logger, dsn string, logs []*record.Log) error {
	e, err := export.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("exporting records: %w", err)
	}
	defer e.Close()

	for _, l := range logs {
		n, err := e.WriteLog(ctx, l)
		if err != nil {
			return fmt.Errorf("exporting records: %w", err)
		}
		log.WithFields(logrus.Fields{
			"source": l.Source,
			"run_id": l.ID.String(),
			"rows":   n,
		}).Info("records exported")
	}
	return nil
}

// sendWebhook delivers the report when the configured trigger fires.
// Delivery failures are logged and never fail the run.
func sendWebhook(ctx context.Context, log *logrus.Logger, cfg *config.Config, report *output.Report) {
	trigger, opts := cfg.Webhook()
	if !trigger.Fires(report) {
		return
	}

	resp := webhook.NewClient().Send(ctx, report, opts)
	entry := log.WithFields(logrus.Fields{
		"url":      opts.URL,
		"attempts": resp.Attempts,
		"duration": resp.Duration.Round(time.Millisecond),
	})
	if !resp.Success() {
		entry.WithError(resp.Error).Warn("webhook failed")
		return
	}
	entry.WithField("status", resp.StatusCode).Info("webhook sent")
}
