// Package parser segments a log stream into records using a header schema.
package parser

import (
	"fmt"

	"github.com/ccollicutt/logframe/pkg/record"
)

// ReadError reports an I/O failure part way through a source. Records
// completed before Line remain valid in the returned log.
type ReadError struct {
	// Source is the file path or stream name being read.
	Source string

	// Line is the number of lines read successfully before the failure.
	Line int

	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s after line %d: %v", e.Source, e.Line, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Stats summarizes one Parse call for reporters.
type Stats struct {
	Source    string
	Records   int
	Lines     int
	Warnings  int
	Truncated int
}

func statsOf(log *record.Log) Stats {
	return Stats{
		Source:    log.Source,
		Records:   log.HeaderRecords(),
		Lines:     log.Lines,
		Warnings:  log.Warnings,
		Truncated: log.Truncated,
	}
}
