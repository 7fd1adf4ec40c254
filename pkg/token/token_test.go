package token

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ccollicutt/logframe/pkg/schema"
)

func TestExtractTokens(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		open  rune
		close rune
		want  []string
	}{
		{
			name:  "header line",
			line:  "[2021-01-01][ERROR][auth][AUTH-500] login failed",
			open:  '[',
			close: ']',
			want:  []string{"2021-01-01", "ERROR", "auth", "AUTH-500"},
		},
		{
			name:  "stack frame",
			line:  "  at com.x.Auth.check(Auth.java:10)",
			open:  '[',
			close: ']',
			want:  nil,
		},
		{
			name:  "parentheses",
			line:  "  at com.x.Auth.check(Auth.java:10)",
			open:  '(',
			close: ')',
			want:  []string{"Auth.java:10"},
		},
		{
			name:  "unclosed stops extraction",
			line:  "[a][b][c",
			open:  '[',
			close: ']',
			want:  []string{"a", "b"},
		},
		{
			name:  "stray close ignored",
			line:  "] [a] ] [b]",
			open:  '[',
			close: ']',
			want:  []string{"a", "b"},
		},
		{
			name:  "empty token",
			line:  "<> <x>",
			open:  '<',
			close: '>',
			want:  []string{"", "x"},
		},
		{
			name:  "nested open",
			line:  "<<WLS Kernel>> <next>",
			open:  '<',
			close: '>',
			want:  []string{"<WLS Kernel", "next"},
		},
		{
			name:  "multibyte delimiters",
			line:  "«INFO» «core» rest",
			open:  '«',
			close: '»',
			want:  []string{"INFO", "core"},
		},
		{
			name:  "empty line",
			line:  "",
			open:  '[',
			close: ']',
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTokens(tt.line, tt.open, tt.close)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTokens() = %q, want %q", got, tt.want)
			}
			if n := CountTokens(tt.line, tt.open, tt.close); n != len(tt.want) {
				t.Errorf("CountTokens() = %d, want %d", n, len(tt.want))
			}
		})
	}
}

func TestExtractTokens_InvalidUTF8(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		open  rune
		close rune
		want  []string
	}{
		{name: "invalid byte matches replacement open", line: "a\xff", open: '\uFFFD', close: ']'},
		{name: "invalid and encoded replacement opens", line: "\uFFFDx]\xffy]", open: '\uFFFD', close: ']', want: []string{"x", "y"}},
		{name: "invalid byte matches replacement close", line: "[a\xff", open: '[', close: '\uFFFD', want: []string{"a"}},
		{name: "invalid bytes inside a token", line: "[\xfe\xff][ok]", open: '[', close: ']', want: []string{"\xfe\xff", "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTokens(tt.line, tt.open, tt.close)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTokens() = %q, want %q", got, tt.want)
			}
			if n := CountTokens(tt.line, tt.open, tt.close); n != len(tt.want) {
				t.Errorf("CountTokens() = %d, want %d", n, len(tt.want))
			}
		})
	}
}

func TestExtractTokens_Deterministic(t *testing.T) {
	line := "[x][y] trailing [z]"
	first := ExtractTokens(line, '[', ']')
	for i := 0; i < 5; i++ {
		if got := ExtractTokens(line, '[', ']'); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d returned %q, want %q", i, got, first)
		}
	}
}

func TestExtractTokenAt(t *testing.T) {
	line := "[2021-01-01][INFO][auth]"

	got, err := ExtractTokenAt(line, '[', ']', 1)
	if err != nil {
		t.Fatalf("ExtractTokenAt() error = %v", err)
	}
	if got != "INFO" {
		t.Errorf("ExtractTokenAt() = %q, want INFO", got)
	}

	_, err = ExtractTokenAt(line, '[', ']', 3)
	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("ExtractTokenAt() error = %v, want *OutOfRangeError", err)
	}
	if oor.Ordinal != 3 || oor.Count != 3 {
		t.Errorf("OutOfRangeError = %+v", oor)
	}

	if _, err := ExtractTokenAt(line, '[', ']', -1); err == nil {
		t.Error("ExtractTokenAt(-1) expected error")
	}
}

func TestExtractSchemaTokens(t *testing.T) {
	s := schema.MustNew('[', ']', map[schema.TokenType]int{
		schema.TokenDate: 0, schema.TokenLevel: 1, schema.TokenModule: 2, schema.TokenCode: 3,
	})

	raw, err := ExtractSchemaTokens("[2021-01-01][ERROR][auth][AUTH-500] login failed [extra]", s)
	if err != nil {
		t.Fatalf("ExtractSchemaTokens() error = %v", err)
	}

	want := []Raw{
		{Type: schema.TokenLevel, Value: "ERROR"},
		{Type: schema.TokenDate, Value: "2021-01-01"},
		{Type: schema.TokenModule, Value: "auth"},
		{Type: schema.TokenCode, Value: "AUTH-500"},
	}
	if !reflect.DeepEqual(raw, want) {
		t.Errorf("ExtractSchemaTokens() = %+v, want %+v", raw, want)
	}

	_, err = ExtractSchemaTokens("[2021-01-01][ERROR]", s)
	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Errorf("ExtractSchemaTokens() error = %v, want *OutOfRangeError", err)
	}
}
