package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ccollicutt/logframe/pkg/analyzer"
)

const textTimeLayout = "2006-01-02 15:04:05"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	s := report.Summary
	_, err := fmt.Fprintf(w, "logframe: %d file(s), %d records, %d lines, %d warnings\n",
		len(report.Files), s.Records, s.Lines, s.Warnings)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	s := report.Summary

	fmt.Fprintln(w, "=== logframe Report ===")
	fmt.Fprintln(w)

	for _, fr := range report.Files {
		origin := "inferred"
		if !fr.Inferred {
			origin = "from file"
		}
		fmt.Fprintf(w, "%s: %d records, %d lines, %d warnings\n", fr.Source, fr.Records, fr.Lines, fr.Warnings)
		fmt.Fprintf(w, "  schema (%s): %s\n", origin, fr.Schema)
	}
	fmt.Fprintln(w)

	if len(s.Levels) > 0 {
		fmt.Fprintln(w, "Levels:")
		for _, lc := range s.Levels {
			fmt.Fprintf(w, "  %-10s %d\n", lc.Level, lc.Count)
		}
		fmt.Fprintln(w)
	}

	f.formatFacets(w, "Top modules:", s.Modules)
	f.formatFacets(w, "Top codes:", s.Codes)

	if s.First != nil {
		fmt.Fprintf(w, "Time span: %s to %s (%s)\n",
			s.First.Format(textTimeLayout), s.Last.Format(textTimeLayout), s.Span())
	} else {
		fmt.Fprintln(w, "Time span: no dated records")
	}
	if s.Undated > 0 {
		fmt.Fprintf(w, "Undated records: %d\n", s.Undated)
	}
	fmt.Fprintf(w, "Multi-line records: %d (longest %d lines)\n", s.MultiLine, s.LongestRecord)
	if s.HeadlessLines > 0 {
		fmt.Fprintf(w, "Lines before first header: %d\n", s.HeadlessLines)
	}
	if s.Filtered > 0 {
		fmt.Fprintf(w, "Outside time range: %d\n", s.Filtered)
	}

	if len(s.Gaps) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Silent periods: %d\n", len(s.Gaps))
		for _, g := range s.Gaps {
			f.formatGap(w, g)
		}
	}

	if f.opts.Verbose && len(report.Records) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Records:")
		for _, r := range report.Records {
			f.formatRecord(w, r)
		}
	}

	fmt.Fprintln(w, "---")
	_, err := fmt.Fprintf(w, "Summary: %d file(s), %d records, %d lines, %d warnings\n",
		len(report.Files), s.Records, s.Lines, s.Warnings)

	if f.opts.Verbose && err == nil {
		_, err = fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	}
	return err
}

func (f *TextFormatter) formatFacets(w io.Writer, title string, facets []analyzer.FacetCount) {
	if len(facets) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for _, fc := range facets {
		fmt.Fprintf(w, "  %-24s %d\n", fc.Value, fc.Count)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatGap(w io.Writer, g analyzer.Gap) {
	fmt.Fprintf(w, "  - %s between %s and %s\n",
		g.Duration.Round(time.Second), g.From.Format(textTimeLayout), g.To.Format(textTimeLayout))
	if f.opts.Verbose {
		fmt.Fprintf(w, "    Source: %s:%d\n", g.Source, g.LineNum)
	}
}

func (f *TextFormatter) formatRecord(w io.Writer, r RecordView) {
	var fields []string
	if r.Date != nil {
		fields = append(fields, r.Date.Format(textTimeLayout))
	}
	for _, v := range []string{r.Level, r.Module, r.Code} {
		if v != "" {
			fields = append(fields, v)
		}
	}
	if r.Headless {
		fields = append(fields, "(before first header)")
	}
	extra := ""
	if n := len(r.Lines) - 1; n > 0 {
		extra = fmt.Sprintf(" (+%d lines)", n)
	}
	fmt.Fprintf(w, "  %s:%d %s%s\n", r.Source, r.LineNum, strings.Join(fields, " "), extra)
}
