package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

const sample = "[2024-01-15][INFO] first\n\n  continuation\n[2024-01-15][ERROR] second\n"

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	if f.Compressed() {
		t.Error("Compressed() = true for plain file")
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sample {
		t.Errorf("content = %q, want %q", data, sample)
	}
}

func TestOpen_Gzip(t *testing.T) {
	// No .gz suffix: detection is by content.
	path := filepath.Join(t.TempDir(), "app.log.1")
	writeGzip(t, path, sample)

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if !f.Compressed() {
		t.Error("Compressed() = false for gzip file")
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sample {
		t.Errorf("content = %q, want %q", data, sample)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpen_NotFound(t *testing.T) {
	if _, err := Open("/nonexistent/file.log"); err == nil {
		t.Error("Open() expected error for missing file")
	}
}

func TestHead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := Head(path, 2)
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	want := []string{"[2024-01-15][INFO] first", "  continuation"}
	if len(lines) != len(want) {
		t.Fatalf("Head() = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Head()[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func readAll(t *testing.T, lr *LineReader) []string {
	t.Helper()
	var got []string
	for lr.Scan() {
		got = append(got, lr.Text())
	}
	if err := lr.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	return got
}

func TestLineReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "lines", input: "a\nb\n", want: []string{"a", "b"}},
		{name: "no final newline", input: "a\nb", want: []string{"a", "b"}},
		{name: "blank lines kept", input: "a\n\n\nb\n", want: []string{"a", "", "", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, NewLineReader(strings.NewReader(tt.input)))
			if len(got) != len(tt.want) {
				t.Fatalf("lines = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLineReader_LongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	lr := NewLineReader(strings.NewReader(long + "\nshort\n"))

	got := readAll(t, lr)
	if len(got) != 2 || got[0] != long || got[1] != "short" {
		t.Errorf("got %d lines", len(got))
	}
	if lr.Truncated() != 0 {
		t.Errorf("Truncated() = %d, want 0", lr.Truncated())
	}
}

func TestLineReader_OversizedLineIsCut(t *testing.T) {
	huge := strings.Repeat("y", 2*MaxLineSize)
	lr := NewLineReader(strings.NewReader("first\n" + huge + "\nlast\n"))

	got := readAll(t, lr)
	if len(got) != 3 {
		t.Fatalf("got %d lines, want 3", len(got))
	}
	if len(got[1]) != MaxLineSize || got[1] != huge[:MaxLineSize] {
		t.Errorf("cut line has %d bytes, want %d", len(got[1]), MaxLineSize)
	}
	if got[0] != "first" || got[2] != "last" {
		t.Errorf("neighbors = %q, %q", got[0], got[2])
	}
	if lr.Truncated() != 1 {
		t.Errorf("Truncated() = %d, want 1", lr.Truncated())
	}
}
