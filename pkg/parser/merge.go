package parser

import (
	"container/heap"
	"time"

	"github.com/ccollicutt/logframe/pkg/record"
)

// Entry is one record of a merged timeline.
type Entry struct {
	Source string
	Record *record.Record
}

// Merge interleaves the records of several logs into a single timeline,
// oldest first. Records keep their order within each log. A record with no
// date sorts with the last dated record before it in the same log; records
// before any date sort first. Equal keys keep the order of the logs given.
func Merge(logs ...*record.Log) []Entry {
	h := &cursorHeap{}
	total := 0
	for i, l := range logs {
		total += len(l.Records)
		if len(l.Records) == 0 {
			continue
		}
		c := &cursor{log: l, logIdx: i}
		c.advance(time.Time{})
		heap.Push(h, c)
	}

	out := make([]Entry, 0, total)
	for h.Len() > 0 {
		c := (*h)[0]
		out = append(out, Entry{Source: c.log.Source, Record: c.log.Records[c.pos]})

		c.pos++
		if c.pos == len(c.log.Records) {
			heap.Pop(h)
			continue
		}
		c.advance(c.key)
		heap.Fix(h, 0)
	}
	return out
}

// cursor walks one log during a merge.
type cursor struct {
	log    *record.Log
	logIdx int
	pos    int
	key    time.Time
}

// advance sets the sort key for the record at pos, falling back to the
// previous key when the record has no date.
func (c *cursor) advance(prev time.Time) {
	if d := c.log.Records[c.pos].Date; d != nil {
		c.key = *d
		return
	}
	c.key = prev
}

// cursorHeap implements heap.Interface ordered by key, then log order.
type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	if !h[i].key.Equal(h[j].key) {
		return h[i].key.Before(h[j].key)
	}
	return h[i].logIdx < h[j].logIdx
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x interface{}) {
	*h = append(*h, x.(*cursor))
}

func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}
