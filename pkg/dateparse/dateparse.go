// Package dateparse turns date tokens taken from log headers into timestamps.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Epoch values outside 2000..2100 are rejected so thread ids, ports and
// counters are not mistaken for dates.
const (
	minUnixSeconds = 946684800  // 2000-01-01
	maxUnixSeconds = 4102444800 // 2100-01-01
)

// Parser parses a lower-cased date token.
type Parser interface {
	Parse(value string) (time.Time, error)
}

// LayoutParser tries a fixed list of layouts in order.
type LayoutParser struct {
	layouts []Layout
}

// New creates a parser for the given Go layouts. With no layouts the
// defaults are used.
func New(layouts ...string) *LayoutParser {
	if len(layouts) == 0 {
		return Default()
	}
	p := &LayoutParser{}
	for _, l := range layouts {
		p.layouts = append(p.layouts, Layout{Name: l, Layout: l})
	}
	return p
}

// Default returns a parser over DefaultLayouts.
func Default() *LayoutParser {
	return &LayoutParser{layouts: DefaultLayouts()}
}

// Layouts returns the layouts tried, in order.
func (p *LayoutParser) Layouts() []Layout {
	out := make([]Layout, len(p.layouts))
	copy(out, p.layouts)
	return out
}

// Parse returns the first successful interpretation of value.
func (p *LayoutParser) Parse(value string) (time.Time, error) {
	ts, _, err := p.ParseLayout(value)
	return ts, err
}

// ParseLayout is like Parse but also reports the layout that matched.
func (p *LayoutParser) ParseLayout(value string) (time.Time, Layout, error) {
	v := normalize(value)
	if v == "" {
		return time.Time{}, Layout{}, fmt.Errorf("empty date")
	}
	for _, l := range p.layouts {
		if ts, ok := parseWith(v, l.Layout); ok {
			return ts, l, nil
		}
	}
	return time.Time{}, Layout{}, fmt.Errorf("no known layout matches date %q", value)
}

// normalize undoes the lower-casing applied by callers: literal letters in
// layouts ("T", "Z", "PM") are case-sensitive while month, weekday and zone
// names are not.
func normalize(value string) string {
	v := strings.TrimSpace(value)
	v = strings.Join(strings.Fields(v), " ")
	return strings.ToUpper(v)
}

func parseWith(v, layout string) (time.Time, bool) {
	switch layout {
	case LayoutUnixSeconds:
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil || secs < minUnixSeconds || secs > maxUnixSeconds {
			return time.Time{}, false
		}
		return time.Unix(secs, 0).UTC(), true

	case LayoutUnixMillis:
		if len(v) != 13 {
			return time.Time{}, false
		}
		millis, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		secs := millis / 1000
		if secs < minUnixSeconds || secs > maxUnixSeconds {
			return time.Time{}, false
		}
		return time.UnixMilli(millis).UTC(), true

	default:
		ts, err := time.Parse(layout, v)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	}
}
