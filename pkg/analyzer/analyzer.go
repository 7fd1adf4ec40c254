package analyzer

import (
	"context"
	"time"

	"github.com/ccollicutt/logframe/pkg/parser"
	"github.com/ccollicutt/logframe/pkg/record"
)

// DefaultTopN is the number of modules and codes kept in a summary.
const DefaultTopN = 10

// Analyzer runs a set of collectors over the merged records of parsed logs.
type Analyzer struct {
	collectors []Collector

	timeRange *TimeRange
	topN      int
	maxGap    time.Duration
}

// TimeRange defines a window for dated records. Undated records are kept.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (tr *TimeRange) contains(t time.Time) bool {
	return !t.Before(tr.Start) && !t.After(tr.End)
}

// Option configures analyzer behavior.
type Option func(*Analyzer)

// WithTimeRange limits analysis to records dated within [start, end].
func WithTimeRange(start, end time.Time) Option {
	return func(a *Analyzer) {
		a.timeRange = &TimeRange{Start: start, End: end}
	}
}

// WithTopN sets how many modules and codes the summary lists.
func WithTopN(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.topN = n
		}
	}
}

// WithMaxGap reports silent periods longer than d. Zero disables gap
// detection.
func WithMaxGap(d time.Duration) Option {
	return func(a *Analyzer) {
		a.maxGap = d
	}
}

// New creates an analyzer with the standard collectors.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{topN: DefaultTopN}
	for _, opt := range opts {
		opt(a)
	}

	a.collectors = []Collector{
		newLevelCollector(),
		newFacetCollector("modules", a.topN, func(r *record.Record) string { return r.Module },
			func(s *Summary, fc []FacetCount) { s.Modules = fc }),
		newFacetCollector("codes", a.topN, func(r *record.Record) string { return r.Code },
			func(s *Summary, fc []FacetCount) { s.Codes = fc }),
		&spanCollector{},
		&traceCollector{},
	}
	if a.maxGap > 0 {
		a.collectors = append(a.collectors, newGapCollector(a.maxGap))
	}
	return a
}

// Analyze summarizes logs. Records from several logs are merged into one
// timeline by date before collection.
func (a *Analyzer) Analyze(ctx context.Context, logs ...*record.Log) (*Summary, error) {
	for _, c := range a.collectors {
		c.Reset()
	}

	s := &Summary{}
	for _, l := range logs {
		s.Sources = append(s.Sources, l.Source)
		s.Lines += l.Lines
		s.Warnings += l.Warnings
	}

	for i, entry := range parser.Merge(logs...) {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		r := entry.Record
		if r.Headless {
			s.HeadlessLines += len(r.Lines)
			continue
		}
		if a.timeRange != nil && r.Date != nil && !a.timeRange.contains(*r.Date) {
			s.Filtered++
			continue
		}

		s.Records++
		for _, c := range a.collectors {
			c.Process(entry.Source, r)
		}
	}

	for _, c := range a.collectors {
		c.Finalize(s)
	}
	return s, nil
}

// Analyze summarizes logs with default settings.
func Analyze(logs ...*record.Log) *Summary {
	s, _ := New().Analyze(context.Background(), logs...)
	return s
}
