package schema

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalid is wrapped by every schema construction error.
var ErrInvalid = errors.New("invalid schema")

// Schema is an immutable description of a log's header layout.
type Schema struct {
	open      rune
	close     rune
	positions map[TokenType]int
}

// New builds a Schema. The positions map is copied; later changes to it do not
// affect the returned Schema.
func New(open, close rune, positions map[TokenType]int) (*Schema, error) {
	if open == 0 || close == 0 {
		return nil, fmt.Errorf("%w: delimiters must be set", ErrInvalid)
	}
	if !validDelimiter(open) || !validDelimiter(close) {
		return nil, fmt.Errorf("%w: delimiters must be valid printable characters, got %q and %q", ErrInvalid, open, close)
	}
	if open == close {
		return nil, fmt.Errorf("%w: open and close delimiters must differ (both %q)", ErrInvalid, open)
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: at least one token position is required", ErrInvalid)
	}

	seen := make(map[int]TokenType, len(positions))
	copied := make(map[TokenType]int, len(positions))
	for _, t := range sortedKeys(positions) {
		pos := positions[t]
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown token type %q", ErrInvalid, t)
		}
		if pos < 0 {
			return nil, fmt.Errorf("%w: %s position must be >= 0, got %d", ErrInvalid, t, pos)
		}
		if other, dup := seen[pos]; dup {
			return nil, fmt.Errorf("%w: %s and %s share position %d", ErrInvalid, other, t, pos)
		}
		seen[pos] = t
		copied[t] = pos
	}

	return &Schema{open: open, close: close, positions: copied}, nil
}

// MustNew is like New but panics on error. Intended for tests and fixed layouts.
func MustNew(open, close rune, positions map[TokenType]int) *Schema {
	s, err := New(open, close, positions)
	if err != nil {
		panic(err)
	}
	return s
}

// Open returns the opening delimiter.
func (s *Schema) Open() rune { return s.open }

// Close returns the closing delimiter.
func (s *Schema) Close() rune { return s.close }

// Len returns the number of configured token types.
func (s *Schema) Len() int { return len(s.positions) }

// Position returns the ordinal of t, if configured.
func (s *Schema) Position(t TokenType) (int, bool) {
	pos, ok := s.positions[t]
	return pos, ok
}

// Positions returns a copy of the type-to-ordinal mapping.
func (s *Schema) Positions() map[TokenType]int {
	out := make(map[TokenType]int, len(s.positions))
	for t, pos := range s.positions {
		out[t] = pos
	}
	return out
}

// Types returns the configured token types in priority order.
func (s *Schema) Types() []TokenType {
	return sortedKeys(s.positions)
}

// MaxPosition returns the highest configured ordinal.
func (s *Schema) MaxPosition() int {
	max := -1
	for _, pos := range s.positions {
		if pos > max {
			max = pos
		}
	}
	return max
}

// Equal reports whether two schemas describe the same layout.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.open != other.open || s.close != other.close || len(s.positions) != len(other.positions) {
		return false
	}
	for t, pos := range s.positions {
		if p, ok := other.positions[t]; !ok || p != pos {
			return false
		}
	}
	return true
}

// String renders the schema as e.g. "[] date=0 level=1".
func (s *Schema) String() string {
	var b strings.Builder
	b.WriteRune(s.open)
	b.WriteRune(s.close)
	for _, t := range s.Types() {
		fmt.Fprintf(&b, " %s=%d", t, s.positions[t])
	}
	return b.String()
}

func sortedKeys(positions map[TokenType]int) []TokenType {
	out := make([]TokenType, 0, len(positions))
	for _, t := range AllTypes {
		if _, ok := positions[t]; ok {
			out = append(out, t)
		}
	}
	// Unknown types are kept so New can reject them with a clear message.
	for t := range positions {
		if !t.Valid() {
			out = append(out, t)
		}
	}
	return out
}

// validDelimiter rejects the replacement character, which also stands for
// undecodable bytes, and runes that cannot appear visibly in a header.
func validDelimiter(r rune) bool {
	return r != utf8.RuneError && utf8.ValidRune(r) && unicode.IsPrint(r) && !unicode.IsSpace(r)
}
