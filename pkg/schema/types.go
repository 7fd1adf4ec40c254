// Package schema describes the layout of a semi-structured log: the delimiter
// pair that bounds each header token and the ordinal position of every known
// token type within a header line.
package schema

import (
	"fmt"
	"strings"
)

// TokenType is a semantic field kind found in a log header.
type TokenType string

const (
	TokenLevel  TokenType = "level"
	TokenDate   TokenType = "date"
	TokenModule TokenType = "module"
	TokenCode   TokenType = "code"
)

// AllTypes lists every token type in priority order (highest first).
// Inference resolves ambiguity in this order and field assignment walks
// types in this order, so results never depend on map iteration.
var AllTypes = []TokenType{TokenLevel, TokenDate, TokenModule, TokenCode}

// Valid reports whether t is one of the known token types.
func (t TokenType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Priority returns the rank of t in AllTypes, or -1 for unknown types.
func (t TokenType) Priority() int {
	for i, known := range AllTypes {
		if t == known {
			return i
		}
	}
	return -1
}

// ParseTokenType parses a token type name (case-insensitive).
func ParseTokenType(s string) (TokenType, error) {
	t := TokenType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown token type %q (must be level, date, module, or code)", s)
	}
	return t, nil
}
