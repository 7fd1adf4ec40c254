package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/logframe/pkg/dateparse"
	"github.com/ccollicutt/logframe/pkg/record"
	"github.com/ccollicutt/logframe/pkg/schema"
	"github.com/ccollicutt/logframe/pkg/source"
	"github.com/ccollicutt/logframe/pkg/token"
)

// DefaultProgressInterval is the number of completed records between
// progress notifications.
const DefaultProgressInterval = 100

// ctxCheckInterval bounds how often the scan loop polls for cancellation.
const ctxCheckInterval = 4096

// Parser groups lines into records. A line is a header when it carries every
// token position of the schema; other lines continue the current record.
type Parser struct {
	schema           *schema.Schema
	positions        []int
	dates            dateparse.Parser
	reporter         Reporter
	progressInterval int
}

// Option configures the Parser.
type Option func(*Parser)

// WithDateParser sets the collaborator used to type DATE tokens.
func WithDateParser(p dateparse.Parser) Option {
	return func(ps *Parser) {
		if p != nil {
			ps.dates = p
		}
	}
}

// WithReporter sets the diagnostics receiver.
func WithReporter(r Reporter) Option {
	return func(ps *Parser) {
		if r != nil {
			ps.reporter = r
		}
	}
}

// WithProgressInterval sets how many completed records separate progress
// notifications (default 100).
func WithProgressInterval(n int) Option {
	return func(ps *Parser) {
		if n > 0 {
			ps.progressInterval = n
		}
	}
}

// New creates a parser for s.
func New(s *schema.Schema, opts ...Option) *Parser {
	p := &Parser{
		schema:           s,
		dates:            dateparse.Default(),
		reporter:         NopReporter{},
		progressInterval: DefaultProgressInterval,
	}
	for _, t := range s.Types() {
		pos, _ := s.Position(t)
		p.positions = append(p.positions, pos)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Schema returns the schema the parser segments by.
func (p *Parser) Schema() *schema.Schema {
	return p.schema
}

// IsHeader reports whether line starts a new record: it must hold at least
// as many tokens as the schema has positions, and a token must exist at
// every configured position.
func (p *Parser) IsHeader(line string) bool {
	open, close := p.schema.Open(), p.schema.Close()
	if token.CountTokens(line, open, close) < p.schema.Len() {
		return false
	}
	for _, pos := range p.positions {
		if _, err := token.ExtractTokenAt(line, open, close, pos); err != nil {
			return false
		}
	}
	return true
}

// ParseFile opens path (plain or gzip) and parses it.
func (p *Parser) ParseFile(ctx context.Context, path string) (*record.Log, error) {
	f, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.Parse(ctx, f, path)
}

// Parse reads r to the end and returns its records in file order. Every line
// read belongs to exactly one record; lines before the first header are
// collected into a headless record. On a read failure the returned log holds
// the records completed so far and the error is a *ReadError.
func (p *Parser) Parse(ctx context.Context, r io.Reader, name string) (*record.Log, error) {
	log := record.NewLog(name, p.schema)
	defer func() { p.reporter.Done(statsOf(log)) }()

	var current *record.Record
	emit := func() {
		if current == nil {
			return
		}
		log.Records = append(log.Records, current)
		current = nil
		if len(log.Records)%p.progressInterval == 0 {
			p.reporter.Progress(name, len(log.Records))
		}
	}

	lines := source.NewLineReader(r)
	defer func() { log.Truncated = lines.Truncated() }()
	for lines.Scan() {
		if log.Lines%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return log, err
			}
		}

		log.Lines++
		line := lines.Text()

		if !p.IsHeader(line) {
			if current == nil {
				current = &record.Record{Lines: []string{line}, LineNum: log.Lines, Headless: true}
				continue
			}
			current.AddLine(line)
			continue
		}

		emit()
		current = record.New(line, log.Lines)
		if err := p.assign(log, current); err != nil {
			return log, err
		}
	}

	if err := lines.Err(); err != nil {
		return log, &ReadError{Source: name, Line: log.Lines, Err: err}
	}

	emit()
	return log, nil
}

func (p *Parser) assign(log *record.Log, r *record.Record) error {
	_, warnings, err := r.AssignHeader(p.schema, p.dates)
	if err != nil {
		// IsHeader guarantees every position exists.
		return fmt.Errorf("assigning header at line %d: %w", r.LineNum, err)
	}
	for _, w := range warnings {
		log.Warnings++
		p.reporter.Warning(log.Source, w)
	}
	return nil
}
