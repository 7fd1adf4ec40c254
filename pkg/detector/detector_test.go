package detector

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/ccollicutt/logframe/pkg/schema"
)

var bracketSample = []string{
	"[2021-01-01][ERROR][auth][AUTH-500] login failed",
	"  at com.x.Auth.check(Auth.java:10)",
	"[2021-01-01][INFO][auth][AUTH-001] login ok",
}

var weblogicSample = []string{
	"####<Jun 21, 2017 10:15:30 AM CLT> <Error> <HTTP> <server01> <AdminServer> <[ACTIVE] ExecuteThread: '1' for queue: 'weblogic.kernel.Default (self-tuning)'> <<WLS Kernel>> <> <> <1498054530000> <BEA-101020> <[ServletContext@452] Servlet failed with Exception>",
	"java.lang.NullPointerException",
	"\tat java.lang.Thread.<init>(Thread.java:1)",
	"\tat weblogic.servlet.internal.StubSecurityHelper.invokeServlet(StubSecurityHelper.java:227)",
	"####<Jun 21, 2017 10:16:02 AM CLT> <Info> <Deployer> <server01> <AdminServer> <[ACTIVE] ExecuteThread: '2' for queue: 'weblogic.kernel.Default (self-tuning)'> <<WLS Kernel>> <> <> <1498054562000> <BEA-149060> <Module app deployed>",
	"####<Jun 21, 2017 10:17:44 AM CLT> <Warning> <HTTP> <server01> <AdminServer> <[ACTIVE] ExecuteThread: '3' for queue: 'weblogic.kernel.Default (self-tuning)'> <<WLS Kernel>> <> <> <1498054664000> <BEA-101019> <Request timed out>",
}

func TestDetectFromLines(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantPair  string
		wantTypes map[schema.TokenType]int
	}{
		{
			name:     "bracket headers with stack frame",
			lines:    bracketSample,
			wantPair: "[]",
			wantTypes: map[schema.TokenType]int{
				schema.TokenDate:   0,
				schema.TokenLevel:  1,
				schema.TokenModule: 2,
				schema.TokenCode:   3,
			},
		},
		{
			name:     "weblogic angle brackets",
			lines:    weblogicSample,
			wantPair: "<>",
			wantTypes: map[schema.TokenType]int{
				schema.TokenDate:   0,
				schema.TokenLevel:  1,
				schema.TokenModule: 2,
				schema.TokenCode:   10,
			},
		},
		{
			name: "level and module only",
			lines: []string{
				"[WARN] [db.pool] connection slow",
				"[INFO] [http] request served",
				"[ERROR] [db.pool] connection lost",
			},
			wantPair: "[]",
			wantTypes: map[schema.TokenType]int{
				schema.TokenLevel:  0,
				schema.TokenModule: 1,
			},
		},
		{
			name:     "single line sample",
			lines:    []string{"(2024-01-15 10:30:00)(debug)(scheduler) tick"},
			wantPair: "()",
			wantTypes: map[schema.TokenType]int{
				schema.TokenDate:   0,
				schema.TokenLevel:  1,
				schema.TokenModule: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().DetectFromLines(tt.lines)
			if err != nil {
				t.Fatalf("DetectFromLines() error = %v", err)
			}
			if !result.HasSchema() {
				t.Fatal("HasSchema() = false")
			}

			s := result.Schema
			if got := string(s.Open()) + string(s.Close()); got != tt.wantPair {
				t.Errorf("delimiters = %q, want %q", got, tt.wantPair)
			}
			got := s.Positions()
			if len(got) != len(tt.wantTypes) {
				t.Fatalf("positions = %v, want %v", got, tt.wantTypes)
			}
			for typ, pos := range tt.wantTypes {
				if got[typ] != pos {
					t.Errorf("position(%s) = %d, want %d", typ, got[typ], pos)
				}
			}
		})
	}
}

func TestDetectFromLines_Failures(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantReason string
	}{
		{
			name:       "empty sample",
			lines:      []string{"", "   "},
			wantReason: "no non-blank lines",
		},
		{
			name:       "no delimiters",
			lines:      []string{"plain text", "more plain text", "and more"},
			wantReason: "stable",
		},
		{
			name:       "one delimited line among plain text",
			lines:      []string{"[x] once", "plain", "plain again"},
			wantReason: "stable",
		},
		{
			name:       "two bracketed lines in a page of prose",
			lines:      proseWithReferences(48),
			wantReason: "stable",
		},
		{
			name:       "tokens with no recognizable type",
			lines:      []string{"[a b][c d] one", "[e f][g h] two"},
			wantReason: "no token position",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().DetectFromLines(tt.lines)
			if err == nil {
				t.Fatalf("DetectFromLines() expected error, got schema %v", result.Schema)
			}
			var ie *InferenceError
			if !errors.As(err, &ie) {
				t.Fatalf("error type = %T, want *InferenceError", err)
			}
			if !strings.Contains(ie.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to contain %q", ie.Reason, tt.wantReason)
			}
			if result.HasSchema() {
				t.Error("HasSchema() = true on failure")
			}
		})
	}
}

// proseWithReferences returns n lines of plain text plus two lines that
// mention a bracketed name mid-sentence.
func proseWithReferences(n int) []string {
	lines := make([]string, 0, n+2)
	for i := 0; i < n; i++ {
		lines = append(lines, "the quick brown fox jumps over the lazy dog")
	}
	return append(lines, "see [README] for details", "and also [CHANGELOG] for history")
}

func TestMinSupport(t *testing.T) {
	tests := []struct {
		sampled int
		want    int
	}{
		{1, 1},
		{2, 2},
		{15, 2},
		{21, 3},
		{50, 5},
		{100, 10},
	}
	for _, tt := range tests {
		if got := minSupport(tt.sampled); got != tt.want {
			t.Errorf("minSupport(%d) = %d, want %d", tt.sampled, got, tt.want)
		}
	}
}

func TestScoreCandidate_NeedsMajorityOfTokenLines(t *testing.T) {
	// Three headers carry three tokens; four other lines carry one.
	lines := []string{
		"(a)(b)(c) one", "(a)(b)(c) two", "(a)(b)(c) three",
		"x (y)", "x (y)", "x (y)", "x (y)",
	}
	score := scoreCandidate(lines, Delimiters{Open: '(', Close: ')'})

	if score.Width != 1 || score.Support != 7 {
		t.Errorf("Width, Support = %d, %d, want 1, 7", score.Width, score.Support)
	}
}

func TestDetectFromLines_SampleSize(t *testing.T) {
	lines := []string{
		"[2021-01-01][ERROR][auth] a",
		"",
		"[2021-01-02][INFO][auth] b",
		"noise",
		"noise",
		"noise",
	}

	result, err := New(WithSampleSize(2)).DetectFromLines(lines)
	if err != nil {
		t.Fatalf("DetectFromLines() error = %v", err)
	}
	if result.SampledLines != 2 {
		t.Errorf("SampledLines = %d, want 2", result.SampledLines)
	}
	if result.HeaderLines != 2 {
		t.Errorf("HeaderLines = %d, want 2", result.HeaderLines)
	}
}

func TestDetectFromLines_Deterministic(t *testing.T) {
	d := New()
	first, err := d.DetectFromLines(weblogicSample)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := d.DetectFromLines(weblogicSample)
		if err != nil {
			t.Fatal(err)
		}
		if !again.Schema.Equal(first.Schema) {
			t.Fatalf("run %d: schema = %v, want %v", i, again.Schema, first.Schema)
		}
	}
}

func TestDetectFromLines_Confidence(t *testing.T) {
	// One of three level values is unknown: 2/3 passes.
	lines := []string{
		"[ERROR][auth] a",
		"[LOUD][auth] b",
		"[INFO][auth] c",
	}

	result, err := New().DetectFromLines(lines)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result.Schema.Position(schema.TokenLevel); ok {
		t.Error("level assigned below the default confidence")
	}

	result, err = New(WithConfidence(0.6)).DetectFromLines(lines)
	if err != nil {
		t.Fatal(err)
	}
	if pos, ok := result.Schema.Position(schema.TokenLevel); !ok || pos != 0 {
		t.Errorf("Position(level) = %d, %v, want 0, true", pos, ok)
	}
}

func TestScoreCandidate(t *testing.T) {
	angle := Delimiters{Open: '<', Close: '>'}
	score := scoreCandidate(weblogicSample, angle)

	if score.Width != 12 {
		t.Errorf("Width = %d, want 12", score.Width)
	}
	if score.Support != 3 {
		t.Errorf("Support = %d, want 3", score.Support)
	}
	if score.TokenLines != 4 {
		t.Errorf("TokenLines = %d, want 4", score.TokenLines)
	}
	if !score.Stable {
		t.Error("Stable = false")
	}
}

func TestRankCandidates(t *testing.T) {
	scores := []CandidateScore{
		{Delimiters: Delimiters{'[', ']'}, Width: 1, Support: 4, Mass: 4, Stable: true},
		{Delimiters: Delimiters{'<', '>'}, Width: 4, Support: 3, Mass: 12, Stable: true},
		{Delimiters: Delimiters{'(', ')'}, Width: 6, Support: 1, Mass: 6, Stable: false},
		{Delimiters: Delimiters{'{', '}'}, Width: 2, Support: 2, Mass: 4, Stable: true},
	}
	rankCandidates(scores)

	want := []string{"<>", "{}", "[]", "()"}
	for i, w := range want {
		if got := scores[i].Delimiters.String(); got != w {
			t.Errorf("rank %d = %s, want %s", i, got, w)
		}
	}

	// A wider structure outranks a heavier narrow one; equal width and mass
	// keep candidate order.
	scores = []CandidateScore{
		{Delimiters: Delimiters{'[', ']'}, Width: 2, Support: 10, Mass: 20, Stable: true},
		{Delimiters: Delimiters{'{', '}'}, Width: 3, Support: 3, Mass: 9, Stable: true},
		{Delimiters: Delimiters{'<', '>'}, Width: 3, Support: 3, Mass: 9, Stable: true},
	}
	rankCandidates(scores)

	want = []string{"{}", "<>", "[]"}
	for i, w := range want {
		if got := scores[i].Delimiters.String(); got != w {
			t.Errorf("rank %d = %s, want %s", i, got, w)
		}
	}
}

func TestDetectFromFile(t *testing.T) {
	content := strings.Join(bracketSample, "\n") + "\n"
	dir := t.TempDir()

	plain := filepath.Join(dir, "app.log")
	if err := os.WriteFile(plain, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	compressed := filepath.Join(dir, "app.log.1.gz")
	if err := os.WriteFile(compressed, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plain, compressed} {
		result, err := New().DetectFromFile(context.Background(), path)
		if err != nil {
			t.Fatalf("DetectFromFile(%s) error = %v", filepath.Base(path), err)
		}
		if got := result.Schema.String(); got != "[] level=1 date=0 module=2 code=3" {
			t.Errorf("DetectFromFile(%s) schema = %q", filepath.Base(path), got)
		}
	}

	if _, err := New().DetectFromFile(context.Background(), filepath.Join(dir, "missing.log")); err == nil {
		t.Error("DetectFromFile() expected error for missing file")
	}
}

func TestParseDelimiters(t *testing.T) {
	tests := []struct {
		in      string
		want    Delimiters
		wantErr bool
	}{
		{in: "[]", want: Delimiters{'[', ']'}},
		{in: "<>", want: Delimiters{'<', '>'}},
		{in: "«»", want: Delimiters{'«', '»'}},
		{in: "[", wantErr: true},
		{in: "[[", wantErr: true},
		{in: "[]]", wantErr: true},
		{in: "\uFFFD]", wantErr: true},
		{in: "\xff]", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDelimiters(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDelimiters(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseDelimiters(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
