// Package detector infers a log's header schema (delimiter pair and token
// positions) from a sample of its lines.
package detector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ccollicutt/logframe/pkg/dateparse"
	"github.com/ccollicutt/logframe/pkg/schema"
	"github.com/ccollicutt/logframe/pkg/source"
	"github.com/ccollicutt/logframe/pkg/token"
)

// InferenceError reports that no schema could be derived from the sample.
type InferenceError struct {
	Reason       string
	SampledLines int
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("no header schema found in %d sampled line(s): %s", e.SampledLines, e.Reason)
}

// DetectionResult holds the outcome of analyzing a sample.
type DetectionResult struct {
	Schema       *schema.Schema   // Inferred schema, nil on failure
	Candidates   []CandidateScore // Every candidate pair, best first
	Positions    []PositionMatch  // Ordinals of the winning pair, in order
	SampledLines int              // Non-blank lines examined
	HeaderLines  int              // Lines carrying the full token structure
}

// CandidateScore describes how one delimiter pair behaves over the sample.
type CandidateScore struct {
	Delimiters Delimiters
	Width      int  // Header token count chosen for this pair
	Support    int  // Lines with at least Width tokens
	Mass       int  // Width * Support, picks the width
	TokenLines int  // Lines with at least one token
	Stable     bool // A width repeats across the sample
}

// PositionMatch reports the type assigned to one ordinal.
type PositionMatch struct {
	Ordinal    int
	Type       schema.TokenType // Empty if no type reached the threshold
	Confidence float64          // Fraction of sampled values passing Type's test
	Sample     string           // First sampled value at this ordinal
}

// Detector infers header schemas.
type Detector struct {
	candidates []Delimiters
	sampleSize int
	confidence float64
	dates      dateparse.Parser
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of non-blank lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithCandidates replaces the delimiter pairs tried, in preference order.
func WithCandidates(pairs ...Delimiters) Option {
	return func(d *Detector) {
		if len(pairs) > 0 {
			d.candidates = pairs
		}
	}
}

// WithConfidence sets the fraction of sampled values that must pass a type
// test for a position to be assigned that type (default 0.9).
func WithConfidence(f float64) Option {
	return func(d *Detector) {
		if f > 0 && f <= 1 {
			d.confidence = f
		}
	}
}

// WithDateParser sets the parser used to recognize DATE positions.
func WithDateParser(p dateparse.Parser) Option {
	return func(d *Detector) {
		if p != nil {
			d.dates = p
		}
	}
}

// minSupportShare is the inverse of the smallest share of sampled lines a
// delimiter structure must appear on.
const minSupportShare = 10

// New creates a new Detector with default candidates.
func New(opts ...Option) *Detector {
	d := &Detector{
		candidates: DefaultCandidates(),
		sampleSize: 100,
		confidence: 0.9,
		dates:      dateparse.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SampleSize returns the configured sample bound.
func (d *Detector) SampleSize() int {
	return d.sampleSize
}

// DetectFromFile samples the head of a log file and infers its schema.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines, err := source.Head(path, d.sampleSize)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines)
}

// DetectFromLines infers a schema from sample lines. Blank lines are ignored
// and at most the configured sample size is examined. On failure the returned
// result still carries the candidate scores and the error is an
// *InferenceError.
func (d *Detector) DetectFromLines(lines []string) (*DetectionResult, error) {
	sample := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample = append(sample, line)
		if len(sample) == d.sampleSize {
			break
		}
	}

	result := &DetectionResult{SampledLines: len(sample)}
	if len(sample) == 0 {
		return result, &InferenceError{Reason: "no non-blank lines"}
	}

	for _, c := range d.candidates {
		result.Candidates = append(result.Candidates, scoreCandidate(sample, c))
	}
	rankCandidates(result.Candidates)

	stable := 0
	for _, score := range result.Candidates {
		if !score.Stable {
			continue
		}
		stable++

		headers := headerLines(sample, score)
		positions := d.assignPositions(headers, score)

		assigned := make(map[schema.TokenType]int)
		for _, p := range positions {
			if p.Type != "" {
				assigned[p.Type] = p.Ordinal
			}
		}
		if len(assigned) == 0 {
			continue
		}

		s, err := schema.New(score.Delimiters.Open, score.Delimiters.Close, assigned)
		if err != nil {
			return result, &InferenceError{Reason: err.Error(), SampledLines: len(sample)}
		}
		result.Schema = s
		result.Positions = positions
		result.HeaderLines = len(headers)
		return result, nil
	}

	if stable == 0 {
		return result, &InferenceError{
			Reason:       "no delimiter pair yields a stable, repeating token count",
			SampledLines: len(sample),
		}
	}
	return result, &InferenceError{
		Reason:       "no token position matches a level, date, module or code",
		SampledLines: len(sample),
	}
}

// scoreCandidate picks the structure width of a pair: the token count n that
// maximizes n times the number of lines holding at least n tokens. Stack
// frames that happen to contain one delimited token (java "<init>") carry
// little weight against full headers. A width must be held by a majority of
// the lines carrying any token of the pair, and by at least minSupport
// lines of the sample.
func scoreCandidate(lines []string, c Delimiters) CandidateScore {
	score := CandidateScore{Delimiters: c}

	counts := make([]int, len(lines))
	maxCount := 0
	for i, line := range lines {
		n := token.CountTokens(line, c.Open, c.Close)
		counts[i] = n
		if n > 0 {
			score.TokenLines++
		}
		if n > maxCount {
			maxCount = n
		}
	}

	floor := minSupport(len(lines))
	for n := maxCount; n >= 1; n-- {
		support := 0
		for _, count := range counts {
			if count >= n {
				support++
			}
		}
		if support < floor || 2*support <= score.TokenLines {
			continue
		}
		if n*support > score.Mass {
			score.Width = n
			score.Support = support
			score.Mass = n * support
		}
	}

	score.Stable = score.Width > 0
	return score
}

// minSupport is the number of lines a width must repeat on: one in ten
// sampled lines, and never fewer than two unless the sample is one line.
func minSupport(sampled int) int {
	if sampled <= 1 {
		return sampled
	}
	floor := (sampled + minSupportShare - 1) / minSupportShare
	if floor < 2 {
		floor = 2
	}
	return floor
}

// rankCandidates orders stable pairs first, then by width (the highest
// consistent token count), then by mass. The sort is stable so candidate
// order breaks remaining ties.
func rankCandidates(scores []CandidateScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Stable != b.Stable {
			return a.Stable
		}
		if a.Width != b.Width {
			return a.Width > b.Width
		}
		return a.Mass > b.Mass
	})
}

// headerLines returns the sampled lines that carry the full structure.
func headerLines(lines []string, score CandidateScore) []string {
	var out []string
	for _, line := range lines {
		if token.CountTokens(line, score.Delimiters.Open, score.Delimiters.Close) >= score.Width {
			out = append(out, line)
		}
	}
	return out
}

// assignPositions walks ordinals left to right and gives each the
// highest-priority unclaimed type whose test passes for enough values.
func (d *Detector) assignPositions(headers []string, score CandidateScore) []PositionMatch {
	columns := make([][]string, score.Width)
	for _, line := range headers {
		tokens := token.ExtractTokens(line, score.Delimiters.Open, score.Delimiters.Close)
		for i := 0; i < score.Width; i++ {
			columns[i] = append(columns[i], tokens[i])
		}
	}

	claimed := make(map[schema.TokenType]bool)
	positions := make([]PositionMatch, 0, score.Width)
	for ordinal, values := range columns {
		match := PositionMatch{Ordinal: ordinal}
		if len(values) > 0 {
			match.Sample = values[0]
		}

		for _, t := range schema.AllTypes {
			if claimed[t] {
				continue
			}
			conf := passRate(values, func(v string) bool {
				return typeTests[t](v, score.Delimiters, d.dates)
			})
			if conf >= d.confidence {
				match.Type = t
				match.Confidence = conf
				claimed[t] = true
				break
			}
		}
		positions = append(positions, match)
	}
	return positions
}

func passRate(values []string, test func(string) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	passed := 0
	for _, v := range values {
		if test(v) {
			passed++
		}
	}
	return float64(passed) / float64(len(values))
}

// BestCandidate returns the top-ranked candidate, or nil if none were scored.
func (r *DetectionResult) BestCandidate() *CandidateScore {
	if len(r.Candidates) == 0 {
		return nil
	}
	return &r.Candidates[0]
}

// HasSchema returns true if inference produced a schema.
func (r *DetectionResult) HasSchema() bool {
	return r.Schema != nil
}
