package logging

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ccollicutt/logframe/pkg/parser"
	"github.com/ccollicutt/logframe/pkg/record"
)

// Field warnings past the first burst are logged at most once per interval.
const (
	warningBurst    = 20
	warningInterval = time.Second
)

// Diagnostics is a parser.Reporter that logs parse progress and field
// warnings. Warnings are rate limited per file; the number dropped is
// logged when the file completes.
type Diagnostics struct {
	log *logrus.Logger

	limit      *rate.Sometimes
	suppressed int
}

// NewDiagnostics returns a reporter logging to log.
func NewDiagnostics(log *logrus.Logger) *Diagnostics {
	return &Diagnostics{log: log, limit: newLimit()}
}

func newLimit() *rate.Sometimes {
	return &rate.Sometimes{First: warningBurst, Interval: warningInterval}
}

var _ parser.Reporter = (*Diagnostics)(nil)

func (d *Diagnostics) Progress(source string, records int) {
	d.log.WithFields(logrus.Fields{
		"source":  source,
		"records": records,
	}).Info("parsing")
}

func (d *Diagnostics) Warning(source string, w record.Warning) {
	logged := false
	d.limit.Do(func() {
		logged = true
		d.log.WithFields(logrus.Fields{
			"source": source,
			"kind":   string(w.Kind),
			"type":   string(w.Type),
			"value":  w.Value,
			"line":   w.LineNum,
		}).Warn("field warning")
	})
	if !logged {
		d.suppressed++
	}
}

func (d *Diagnostics) Done(stats parser.Stats) {
	entry := d.log.WithFields(logrus.Fields{
		"source":   stats.Source,
		"records":  stats.Records,
		"lines":    stats.Lines,
		"warnings": stats.Warnings,
	})
	if d.suppressed > 0 {
		entry = entry.WithField("suppressed", d.suppressed)
	}
	if stats.Truncated > 0 {
		entry = entry.WithField("truncated", stats.Truncated)
	}
	entry.Info("parsed")

	d.limit = newLimit()
	d.suppressed = 0
}

// Suppressed returns how many warnings the current file has dropped so far.
func (d *Diagnostics) Suppressed() int {
	return d.suppressed
}
