// logframe - Log Record Framing Tool
//
// logframe infers the header layout of a semi-structured log and splits it
// into typed records: a header line plus the stack trace or wrapped message
// lines that follow it.
package main

import (
	"os"

	"github.com/ccollicutt/logframe/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
