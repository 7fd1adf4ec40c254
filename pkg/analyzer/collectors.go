package analyzer

import (
	"sort"
	"time"

	"github.com/ccollicutt/logframe/pkg/record"
)

type levelCollector struct {
	counts map[record.Level]int
}

func newLevelCollector() *levelCollector {
	return &levelCollector{counts: make(map[record.Level]int)}
}

func (c *levelCollector) Name() string { return "levels" }

func (c *levelCollector) Process(_ string, r *record.Record) {
	c.counts[r.Level]++
}

func (c *levelCollector) Finalize(s *Summary) {
	s.Levels = nil
	levels := append([]record.Level{record.LevelNone}, record.Levels()...)
	for _, l := range levels {
		if n := c.counts[l]; n > 0 {
			s.Levels = append(s.Levels, LevelCount{Level: l, Count: n})
		}
	}
}

func (c *levelCollector) Reset() {
	c.counts = make(map[record.Level]int)
}

// facetCollector counts the distinct non-empty values of one text field.
type facetCollector struct {
	name   string
	topN   int
	value  func(*record.Record) string
	store  func(*Summary, []FacetCount)
	counts map[string]int
}

func newFacetCollector(name string, topN int, value func(*record.Record) string, store func(*Summary, []FacetCount)) *facetCollector {
	return &facetCollector{
		name:   name,
		topN:   topN,
		value:  value,
		store:  store,
		counts: make(map[string]int),
	}
}

func (c *facetCollector) Name() string { return c.name }

func (c *facetCollector) Process(_ string, r *record.Record) {
	if v := c.value(r); v != "" {
		c.counts[v]++
	}
}

// Finalize keeps the topN values by count, ties broken by value.
func (c *facetCollector) Finalize(s *Summary) {
	out := make([]FacetCount, 0, len(c.counts))
	for v, n := range c.counts {
		out = append(out, FacetCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > c.topN {
		out = out[:c.topN]
	}
	c.store(s, out)
}

func (c *facetCollector) Reset() {
	c.counts = make(map[string]int)
}

// spanCollector tracks the earliest and latest record dates.
type spanCollector struct {
	first, last *time.Time
	undated     int
}

func (c *spanCollector) Name() string { return "span" }

func (c *spanCollector) Process(_ string, r *record.Record) {
	if r.Date == nil {
		c.undated++
		return
	}
	d := *r.Date
	if c.first == nil || d.Before(*c.first) {
		c.first = &d
	}
	if c.last == nil || d.After(*c.last) {
		c.last = &d
	}
}

func (c *spanCollector) Finalize(s *Summary) {
	s.First = c.first
	s.Last = c.last
	s.Undated = c.undated
}

func (c *spanCollector) Reset() {
	*c = spanCollector{}
}

// traceCollector counts records with continuation lines.
type traceCollector struct {
	multiLine int
	longest   int
}

func (c *traceCollector) Name() string { return "traces" }

func (c *traceCollector) Process(_ string, r *record.Record) {
	if len(r.Lines) > 1 {
		c.multiLine++
	}
	if len(r.Lines) > c.longest {
		c.longest = len(r.Lines)
	}
}

func (c *traceCollector) Finalize(s *Summary) {
	s.MultiLine = c.multiLine
	s.LongestRecord = c.longest
}

func (c *traceCollector) Reset() {
	*c = traceCollector{}
}
