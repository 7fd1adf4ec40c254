package record

import (
	"fmt"
	"strings"

	"github.com/ccollicutt/logframe/pkg/dateparse"
	"github.com/ccollicutt/logframe/pkg/schema"
	"github.com/ccollicutt/logframe/pkg/token"
)

// WarningKind categorizes a recoverable field assignment problem.
type WarningKind string

const (
	WarningUnrecognizedLevel WarningKind = "unrecognized_level"
	WarningUnparsedDate      WarningKind = "unparsed_date"
)

// Warning describes a header token that could not be typed. The field it
// targets is left unset.
type Warning struct {
	Kind    WarningKind      `json:"kind"`
	Type    schema.TokenType `json:"type"`
	Value   string           `json:"value"`
	LineNum int              `json:"line_num"`
}

func (w Warning) String() string {
	switch w.Kind {
	case WarningUnrecognizedLevel:
		return fmt.Sprintf("line %d: undefined level %q", w.LineNum, w.Value)
	case WarningUnparsedDate:
		return fmt.Sprintf("line %d: date not parsed %q", w.LineNum, w.Value)
	default:
		return fmt.Sprintf("line %d: %s %q", w.LineNum, w.Kind, w.Value)
	}
}

// fieldParser types one token value without touching the record. On success
// it returns a setter that stores the value; on failure a warning kind.
type fieldParser func(value string, dates dateparse.Parser) (func(*Record), WarningKind)

var fieldParsers = map[schema.TokenType]fieldParser{
	schema.TokenLevel:  parseLevelField,
	schema.TokenDate:   parseDateField,
	schema.TokenModule: parseTextField(func(r *Record, v string) { r.Module = v }),
	schema.TokenCode:   parseTextField(func(r *Record, v string) { r.Code = v }),
}

// Assign stores the typed value of every token on the record. Every token is
// processed even if an earlier one fails to parse; the returned count is the
// number of tokens processed, not the number successfully typed.
func (r *Record) Assign(tokens []token.Raw, dates dateparse.Parser) (int, []Warning) {
	if dates == nil {
		dates = dateparse.Default()
	}

	var warnings []Warning
	processed := 0
	for _, tok := range tokens {
		parse, ok := fieldParsers[tok.Type]
		if !ok {
			continue
		}
		set, kind := parse(tok.Value, dates)
		if set != nil {
			set(r)
		} else {
			warnings = append(warnings, Warning{
				Kind:    kind,
				Type:    tok.Type,
				Value:   tok.Value,
				LineNum: r.LineNum,
			})
		}
		processed++
	}
	return processed, warnings
}

func parseLevelField(value string, _ dateparse.Parser) (func(*Record), WarningKind) {
	level, ok := ParseLevel(value)
	if !ok {
		return nil, WarningUnrecognizedLevel
	}
	return func(r *Record) { r.Level = level }, ""
}

func parseDateField(value string, dates dateparse.Parser) (func(*Record), WarningKind) {
	ts, err := dates.Parse(strings.ToLower(value))
	if err != nil {
		return nil, WarningUnparsedDate
	}
	return func(r *Record) { r.Date = &ts }, ""
}

// MODULE and CODE are stored verbatim.
func parseTextField(store func(*Record, string)) fieldParser {
	return func(value string, _ dateparse.Parser) (func(*Record), WarningKind) {
		return func(r *Record) { store(r, value) }, ""
	}
}

// AssignHeader extracts the schema's tokens from the record's header line and
// assigns them. It fails only when the record has no lines or the header does
// not hold every configured position.
func (r *Record) AssignHeader(s *schema.Schema, dates dateparse.Parser) (int, []Warning, error) {
	header, err := r.Header()
	if err != nil {
		return 0, nil, err
	}
	tokens, err := token.ExtractSchemaTokens(header, s)
	if err != nil {
		return 0, nil, fmt.Errorf("extracting header tokens: %w", err)
	}
	n, warnings := r.Assign(tokens, dates)
	return n, warnings, nil
}
