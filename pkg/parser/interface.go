package parser

import "github.com/ccollicutt/logframe/pkg/record"

// Reporter receives diagnostics while a source is parsed.
// Implementations must not block; the parser calls them synchronously and
// their behavior never changes the parsed output.
type Reporter interface {
	// Progress is called every progress interval of completed records.
	Progress(source string, records int)

	// Warning is called for each header token that could not be typed.
	Warning(source string, w record.Warning)

	// Done is called once when a source has been fully read or has failed.
	Done(stats Stats)
}

// NopReporter discards all diagnostics.
type NopReporter struct{}

func (NopReporter) Progress(string, int) {}
func (NopReporter) Warning(string, record.Warning) {}
func (NopReporter) Done(Stats) {}

// MultiReporter fans diagnostics out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) Progress(source string, records int) {
	for _, r := range m {
		r.Progress(source, records)
	}
}

func (m MultiReporter) Warning(source string, w record.Warning) {
	for _, r := range m {
		r.Warning(source, w)
	}
}

func (m MultiReporter) Done(stats Stats) {
	for _, r := range m {
		r.Done(stats)
	}
}
