// Package token splits log lines into delimited tokens.
package token

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ccollicutt/logframe/pkg/schema"
)

// Raw is a token value extracted at a known position, not yet type-checked.
type Raw struct {
	Type  schema.TokenType
	Value string
}

// OutOfRangeError reports a request for a token ordinal the line does not have.
type OutOfRangeError struct {
	Ordinal int
	Count   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("token %d requested but line has only %d token(s)", e.Ordinal, e.Count)
}

// ExtractTokens returns, in order, every substring found strictly between an
// open delimiter and the next close delimiter. A close delimiter with no
// pending open is ignored; an open delimiter with no later close ends the scan.
func ExtractTokens(line string, open, close rune) []string {
	var tokens []string
	rest := line
	for {
		tok, next, ok := nextToken(rest, open, close)
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
		rest = next
	}
}

// CountTokens returns len(ExtractTokens(line, open, close)) without allocating.
func CountTokens(line string, open, close rune) int {
	n := 0
	rest := line
	for {
		_, next, ok := nextToken(rest, open, close)
		if !ok {
			return n
		}
		n++
		rest = next
	}
}

// nextToken finds the first token of s and returns it with the text after its
// close delimiter.
func nextToken(s string, open, close rune) (tok, rest string, ok bool) {
	i := strings.IndexRune(s, open)
	if i < 0 {
		return "", "", false
	}
	s = skipRune(s, i)

	j := strings.IndexRune(s, close)
	if j < 0 {
		return "", "", false
	}
	return s[:j], skipRune(s, j), true
}

// skipRune returns s after the rune starting at byte i. The width is taken
// from the bytes actually present: IndexRune(s, utf8.RuneError) also matches
// a single invalid byte.
func skipRune(s string, i int) string {
	_, w := utf8.DecodeRuneInString(s[i:])
	return s[i+w:]
}

// ExtractTokenAt returns the ordinal-th (0-based) token of the line.
func ExtractTokenAt(line string, open, close rune, ordinal int) (string, error) {
	if ordinal < 0 {
		return "", &OutOfRangeError{Ordinal: ordinal}
	}
	tokens := ExtractTokens(line, open, close)
	if ordinal >= len(tokens) {
		return "", &OutOfRangeError{Ordinal: ordinal, Count: len(tokens)}
	}
	return tokens[ordinal], nil
}

// ExtractSchemaTokens returns one Raw token per type configured in s, in
// priority order. It fails with *OutOfRangeError when the line has too few
// tokens for any configured position.
func ExtractSchemaTokens(line string, s *schema.Schema) ([]Raw, error) {
	tokens := ExtractTokens(line, s.Open(), s.Close())
	types := s.Types()
	out := make([]Raw, 0, len(types))
	for _, t := range types {
		pos, _ := s.Position(t)
		if pos >= len(tokens) {
			return nil, &OutOfRangeError{Ordinal: pos, Count: len(tokens)}
		}
		out = append(out, Raw{Type: t, Value: tokens[pos]})
	}
	return out, nil
}
