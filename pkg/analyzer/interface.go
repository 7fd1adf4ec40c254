package analyzer

import "github.com/ccollicutt/logframe/pkg/record"

// Collector accumulates one aspect of a summary. Each concern (levels,
// facets, time span, traces, gaps) implements this interface.
type Collector interface {
	// Name identifies the collector.
	Name() string

	// Process handles one record of the merged timeline.
	Process(source string, r *record.Record)

	// Finalize writes the collected figures into s.
	Finalize(s *Summary)

	// Reset clears internal state for reuse.
	Reset()
}
