// Package output renders parse results for humans and machines.
package output

import (
	"time"

	"github.com/ccollicutt/logframe/pkg/analyzer"
	"github.com/ccollicutt/logframe/pkg/parser"
	"github.com/ccollicutt/logframe/pkg/record"
)

// Report is the complete output of a parse run.
type Report struct {
	// Summary aggregates every file of the run.
	Summary *analyzer.Summary `json:"summary"`

	// Files describes each parsed file.
	Files []FileReport `json:"files"`

	// Records is the merged record timeline. Formatters only render it in
	// verbose mode.
	Records []RecordView `json:"records,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// FileReport describes one parsed file.
type FileReport struct {
	Source   string `json:"source"`
	RunID    string `json:"run_id"`
	Schema   string `json:"schema"`
	Inferred bool   `json:"inferred"`
	Records  int    `json:"records"`
	Lines    int    `json:"lines"`
	Warnings int    `json:"warnings"`

	// HeadlessLines counts lines before the first header. They are not a
	// record, matching Summary.Records.
	HeadlessLines int `json:"headless_lines,omitempty"`
}

// RecordView is one record as shown in verbose output.
type RecordView struct {
	Source   string     `json:"source"`
	LineNum  int        `json:"line_num"`
	Headless bool       `json:"headless,omitempty"`
	Level    string     `json:"level,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Module   string     `json:"module,omitempty"`
	Code     string     `json:"code,omitempty"`
	Lines    []string   `json:"lines"`
}

// Metadata provides context about the run.
type Metadata struct {
	// SchemaFile is the schema file used instead of inference, if any.
	SchemaFile string `json:"schema_file,omitempty"`

	AnalyzedAt time.Time     `json:"analyzed_at"`
	Duration   time.Duration `json:"duration"`
}

// NewReport builds a report from parsed logs and their summary. inferred
// reports, per source, whether its schema came from inference. Records are
// included when withRecords is set.
func NewReport(summary *analyzer.Summary, logs []*record.Log, inferred map[string]bool, withRecords bool) *Report {
	report := &Report{Summary: summary}

	for _, l := range logs {
		fr := FileReport{
			Source:   l.Source,
			RunID:    l.ID.String(),
			Inferred: inferred[l.Source],
			Records:  l.HeaderRecords(),
			Lines:    l.Lines,
			Warnings: l.Warnings,
		}
		if len(l.Records) > 0 && l.Records[0].Headless {
			fr.HeadlessLines = len(l.Records[0].Lines)
		}
		if l.Schema != nil {
			fr.Schema = l.Schema.String()
		}
		report.Files = append(report.Files, fr)
	}

	if withRecords {
		for _, e := range parser.Merge(logs...) {
			report.Records = append(report.Records, newRecordView(e))
		}
	}
	return report
}

func newRecordView(e parser.Entry) RecordView {
	r := e.Record
	v := RecordView{
		Source:   e.Source,
		LineNum:  r.LineNum,
		Headless: r.Headless,
		Date:     r.Date,
		Module:   r.Module,
		Code:     r.Code,
		Lines:    r.Lines,
	}
	if r.Level != record.LevelNone {
		v.Level = r.Level.String()
	}
	return v
}

// HasWarnings returns true if any header field failed to parse.
func (r *Report) HasWarnings() bool {
	return r.Summary != nil && r.Summary.Warnings > 0
}
