// Package analyzer summarizes parsed logs: level distribution, busiest
// modules and codes, time span, stack traces and silent periods.
package analyzer

import (
	"time"

	"github.com/ccollicutt/logframe/pkg/record"
)

// LevelCount is the number of records at one level.
type LevelCount struct {
	Level record.Level `json:"level"`
	Count int          `json:"count"`
}

// FacetCount is the number of records carrying one module or code value.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Gap is a silent period between two consecutive dated records.
type Gap struct {
	From     time.Time     `json:"from"`
	To       time.Time     `json:"to"`
	Duration time.Duration `json:"duration"`

	// Source and LineNum locate the record that ends the silence.
	Source  string `json:"source"`
	LineNum int    `json:"line_num"`
}

// Summary is the analysis of one or more parsed logs.
type Summary struct {
	Sources []string `json:"sources"`

	// Records counts header records; HeadlessLines counts lines that came
	// before the first header of their file.
	Records       int `json:"records"`
	Lines         int `json:"lines"`
	HeadlessLines int `json:"headless_lines"`
	Warnings      int `json:"warnings"`

	// Levels lists every level seen, in severity order. Records with no
	// level are counted under record.LevelNone.
	Levels  []LevelCount `json:"levels"`
	Modules []FacetCount `json:"modules,omitempty"`
	Codes   []FacetCount `json:"codes,omitempty"`

	First   *time.Time `json:"first,omitempty"`
	Last    *time.Time `json:"last,omitempty"`
	Undated int        `json:"undated"`

	// MultiLine counts records with continuation lines; LongestRecord is the
	// largest line count of a single record.
	MultiLine     int `json:"multi_line"`
	LongestRecord int `json:"longest_record"`

	Gaps []Gap `json:"gaps,omitempty"`

	// Filtered counts dated records dropped by a time range.
	Filtered int `json:"filtered,omitempty"`
}

// Count returns the number of records at level.
func (s *Summary) Count(level record.Level) int {
	for _, lc := range s.Levels {
		if lc.Level == level {
			return lc.Count
		}
	}
	return 0
}

// Span returns the time between the first and last dated record.
func (s *Summary) Span() time.Duration {
	if s.First == nil || s.Last == nil {
		return 0
	}
	return s.Last.Sub(*s.First)
}
