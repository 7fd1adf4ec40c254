// Package source opens log files for line-oriented reading.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// MaxLineSize is the number of bytes of a line that are kept.
const MaxLineSize = 1024 * 1024

var gzipMagic = []byte{0x1f, 0x8b}

// File is an opened log file. Gzip-compressed files are decompressed
// transparently.
type File struct {
	Path string

	file *os.File
	gz   *gzip.Reader
	r    io.Reader
}

// Open opens path for reading, detecting gzip content by its magic bytes.
func Open(path string) (*File, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	lf := &File{Path: path, file: f, r: br}

	head, err := br.Peek(len(gzipMagic))
	if err == nil && bytes.Equal(head, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		lf.gz = gz
		lf.r = gz
	}

	return lf, nil
}

// Read implements io.Reader over the (possibly decompressed) content.
func (f *File) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

// Compressed reports whether the file is gzip-compressed.
func (f *File) Compressed() bool {
	return f.gz != nil
}

// Close releases the underlying file.
func (f *File) Close() error {
	var gzErr error
	if f.gz != nil {
		gzErr = f.gz.Close()
	}
	if err := f.file.Close(); err != nil {
		return err
	}
	return gzErr
}

// LineReader reads newline-terminated lines of any length. A line longer
// than MaxLineSize keeps its first MaxLineSize bytes and the rest of it is
// skipped, so a single oversized line never fails the whole source. A
// trailing "\r" is dropped as bufio.ScanLines does.
type LineReader struct {
	r   *bufio.Reader
	max int

	line      []byte
	err       error
	truncated int
}

// NewLineReader returns a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024), max: MaxLineSize}
}

// Scan advances to the next line. It returns false at the end of input or
// on a read error; a final line with no newline is still returned first.
func (lr *LineReader) Scan() bool {
	if lr.err != nil {
		return false
	}
	lr.line = lr.line[:0]

	read, cut := false, false
	for {
		chunk, err := lr.r.ReadSlice('\n')
		eol := err == nil
		if eol {
			chunk = chunk[:len(chunk)-1]
		}
		if len(chunk) > 0 || eol {
			read = true
		}
		if room := lr.max - len(lr.line); len(chunk) > room {
			lr.line = append(lr.line, chunk[:room]...)
			cut = true
		} else {
			lr.line = append(lr.line, chunk...)
		}

		if eol {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		lr.err = err
		if !read {
			return false
		}
		break
	}

	if !cut && len(lr.line) > 0 && lr.line[len(lr.line)-1] == '\r' {
		lr.line = lr.line[:len(lr.line)-1]
	}
	if cut {
		lr.truncated++
	}
	return true
}

// Text returns the current line.
func (lr *LineReader) Text() string {
	return string(lr.line)
}

// Err returns the first non-EOF read error.
func (lr *LineReader) Err() error {
	if errors.Is(lr.err, io.EOF) {
		return nil
	}
	return lr.err
}

// Truncated returns how many lines were cut to MaxLineSize so far.
func (lr *LineReader) Truncated() int {
	return lr.truncated
}

// Head returns up to n lines from the start of path, skipping blank lines.
func Head(path string, n int) ([]string, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	lr := NewLineReader(f)
	for len(lines) < n && lr.Scan() {
		line := lr.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := lr.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
