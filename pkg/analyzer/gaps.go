package analyzer

import (
	"time"

	"github.com/ccollicutt/logframe/pkg/record"
)

// datedRecord is the position of one dated record in the timeline.
type datedRecord struct {
	date    time.Time
	source  string
	lineNum int
}

// gapCollector reports silent periods: consecutive dated records further
// apart than maxGap.
type gapCollector struct {
	maxGap time.Duration

	prev *datedRecord
	gaps []Gap
}

func newGapCollector(maxGap time.Duration) *gapCollector {
	return &gapCollector{maxGap: maxGap}
}

func (c *gapCollector) Name() string { return "gaps" }

func (c *gapCollector) Process(source string, r *record.Record) {
	if r.Date == nil {
		return
	}
	curr := &datedRecord{date: *r.Date, source: source, lineNum: r.LineNum}

	if c.prev != nil {
		if gap := curr.date.Sub(c.prev.date); gap > c.maxGap {
			c.gaps = append(c.gaps, Gap{
				From:     c.prev.date,
				To:       curr.date,
				Duration: gap,
				Source:   curr.source,
				LineNum:  curr.lineNum,
			})
		}
	}
	c.prev = curr
}

func (c *gapCollector) Finalize(s *Summary) {
	s.Gaps = c.gaps
}

func (c *gapCollector) Reset() {
	c.prev = nil
	c.gaps = nil
}
