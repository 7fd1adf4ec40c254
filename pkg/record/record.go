// Package record holds the typed records produced by segmenting a log and the
// rules that assign header tokens to record fields.
package record

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/logframe/pkg/schema"
)

// ErrEmptyRecord is returned when reading the header of a record with no lines.
var ErrEmptyRecord = errors.New("record has no lines")

// Record is one log entry: a header line plus any continuation lines.
type Record struct {
	// Lines holds the header first, then continuation lines in file order.
	Lines []string `json:"lines"`

	// LineNum is the 1-based line number of Lines[0] in the source.
	LineNum int `json:"line_num"`

	// Headless marks the placeholder record that collects lines appearing
	// before the first header. Its fields are never assigned.
	Headless bool `json:"headless,omitempty"`

	Level  Level      `json:"level"`
	Date   *time.Time `json:"date,omitempty"`
	Module string     `json:"module,omitempty"`
	Code   string     `json:"code,omitempty"`
}

// New creates a record whose header is line.
func New(line string, lineNum int) *Record {
	return &Record{Lines: []string{line}, LineNum: lineNum}
}

// Header returns the first line of the record.
func (r *Record) Header() (string, error) {
	if len(r.Lines) == 0 {
		return "", ErrEmptyRecord
	}
	return r.Lines[0], nil
}

// AddLine appends a continuation line.
func (r *Record) AddLine(line string) {
	r.Lines = append(r.Lines, line)
}

// Continuations returns the lines after the header.
func (r *Record) Continuations() []string {
	if len(r.Lines) < 2 {
		return nil
	}
	return r.Lines[1:]
}

// Log is the result of parsing one file. It is not modified after parsing
// returns.
type Log struct {
	ID       uuid.UUID      `json:"id"`
	Source   string         `json:"source"`
	Schema   *schema.Schema `json:"-"`
	Records  []*Record      `json:"records"`
	Lines    int            `json:"lines"`
	Warnings int            `json:"warnings"`

	// Truncated counts lines longer than source.MaxLineSize that were cut.
	Truncated int `json:"truncated,omitempty"`
}

// NewLog creates an empty log for source with a fresh run id.
func NewLog(source string, s *schema.Schema) *Log {
	return &Log{
		ID:     uuid.New(),
		Source: source,
		Schema: s,
	}
}

// HeaderRecords counts records that start at a header line. The headless
// placeholder is not one.
func (l *Log) HeaderRecords() int {
	n := len(l.Records)
	if n > 0 && l.Records[0].Headless {
		n--
	}
	return n
}

// AllLines returns every line of every record in order. For a fully parsed
// file this equals the file's own line sequence.
func (l *Log) AllLines() []string {
	out := make([]string, 0, l.Lines)
	for _, r := range l.Records {
		out = append(out, r.Lines...)
	}
	return out
}
