package detector

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ccollicutt/logframe/pkg/dateparse"
	"github.com/ccollicutt/logframe/pkg/record"
	"github.com/ccollicutt/logframe/pkg/schema"
)

// Delimiters is a candidate bracket pair.
type Delimiters struct {
	Open  rune
	Close rune
}

func (d Delimiters) String() string {
	return string(d.Open) + string(d.Close)
}

// ParseDelimiters parses a two-character pair such as "[]" or "<>".
func ParseDelimiters(s string) (Delimiters, error) {
	if utf8.RuneCountInString(s) != 2 {
		return Delimiters{}, fmt.Errorf("delimiter pair must be exactly two characters, got %q", s)
	}
	open, size := utf8.DecodeRuneInString(s)
	close, _ := utf8.DecodeRuneInString(s[size:])
	if open == utf8.RuneError || close == utf8.RuneError {
		return Delimiters{}, fmt.Errorf("delimiter pair %q is not valid UTF-8 or uses U+FFFD", s)
	}
	if open == close {
		return Delimiters{}, fmt.Errorf("delimiter pair %q must use two different characters", s)
	}
	return Delimiters{Open: open, Close: close}, nil
}

// DefaultCandidates returns the delimiter pairs tried, in preference order.
func DefaultCandidates() []Delimiters {
	return []Delimiters{
		{Open: '[', Close: ']'},
		{Open: '<', Close: '>'},
		{Open: '(', Close: ')'},
		{Open: '{', Close: '}'},
	}
}

var (
	// Code-shaped values: a letter prefix, a dash or underscore, then digits
	// (AUTH-500, BEA-101020, ORA_00942).
	codePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*[-_][0-9]+$`)

	// Identifier-like values: package, logger or subsystem names.
	modulePattern = regexp.MustCompile(`^[A-Za-z][\w.$/-]*$`)
)

// typeTest decides whether one sampled token value fits a token type.
type typeTest func(value string, d Delimiters, dates dateparse.Parser) bool

var typeTests = map[schema.TokenType]typeTest{
	schema.TokenLevel: func(v string, _ Delimiters, _ dateparse.Parser) bool {
		_, ok := record.ParseLevel(v)
		return ok
	},
	schema.TokenDate: func(v string, _ Delimiters, dates dateparse.Parser) bool {
		_, err := dates.Parse(strings.ToLower(v))
		return err == nil
	},
	schema.TokenModule: func(v string, d Delimiters, _ dateparse.Parser) bool {
		return plausible(v, d) && modulePattern.MatchString(v) && !codePattern.MatchString(v)
	},
	schema.TokenCode: func(v string, d Delimiters, _ dateparse.Parser) bool {
		return plausible(v, d) && codePattern.MatchString(v)
	},
}

// plausible rejects empty values and values that embed a delimiter.
func plausible(v string, d Delimiters) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r == d.Open || r == d.Close {
			return false
		}
	}
	return true
}
