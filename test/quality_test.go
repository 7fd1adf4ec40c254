package test

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// getProjectRoot returns the project root directory based on this test file's location.
func getProjectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	// Go up one level from test/ to project root
	return filepath.Dir(filepath.Dir(filename))
}

// walkGo visits every Go file of the module. Directories the go tool ignores
// (hidden, "_"-prefixed, testdata, vendor) are skipped.
func walkGo(t *testing.T, visit func(path string)) {
	t.Helper()
	err := filepath.Walk(getProjectRoot(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if path != getProjectRoot() && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			visit(path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk directory: %v", err)
	}
}

// TestNoSkippedTests ensures no test files contain t.Skip() calls.
// Skipped tests hide failures - tests should either pass or fail, never skip.
func TestNoSkippedTests(t *testing.T) {
	forbiddenPatterns := []string{
		"t.Skip(",
		"t.SkipNow(",
		"testing.Short()",
	}

	var testFiles []string
	walkGo(t, func(path string) {
		// Skip this quality test file itself
		if strings.HasSuffix(path, "_test.go") && !strings.HasSuffix(path, "quality_test.go") {
			testFiles = append(testFiles, path)
		}
	})

	var violations []string
	for _, testFile := range testFiles {
		f, err := os.Open(testFile)
		if err != nil {
			t.Fatalf("Failed to open %s: %v", testFile, err)
		}

		scanner := bufio.NewScanner(f)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := scanner.Text()

			// Skip comments
			if strings.HasPrefix(strings.TrimSpace(line), "//") {
				continue
			}

			for _, pattern := range forbiddenPatterns {
				if strings.Contains(line, pattern) {
					violations = append(violations,
						fmt.Sprintf("%s:%d: contains forbidden pattern '%s'", testFile, lineNum, pattern))
				}
			}
		}
		f.Close()

		if err := scanner.Err(); err != nil {
			t.Fatalf("Error scanning %s: %v", testFile, err)
		}
	}

	if len(violations) > 0 {
		t.Errorf("Found %d test skip violation(s):\n", len(violations))
		for _, v := range violations {
			t.Errorf("  %s", v)
		}
		t.Error("\nTests should not be skipped. Either:")
		t.Error("  1. Fix the issue causing the skip")
		t.Error("  2. Use t.Fatalf() if a required resource is missing")
		t.Error("  3. Remove the test if it's no longer relevant")
	}
}

// TestEveryPackageTested ensures each package directory has a test file.
func TestEveryPackageTested(t *testing.T) {
	sources := map[string]bool{}
	tested := map[string]bool{}
	walkGo(t, func(path string) {
		dir := filepath.Dir(path)
		if strings.HasSuffix(path, "_test.go") {
			tested[dir] = true
		} else {
			sources[dir] = true
		}
	})

	if len(sources) == 0 {
		t.Fatal("No packages found - something is wrong with discovery")
	}

	for dir := range sources {
		// main packages are covered by the end-to-end tests
		if strings.Contains(dir, string(filepath.Separator)+"cmd"+string(filepath.Separator)) {
			continue
		}
		if !tested[dir] {
			rel, _ := filepath.Rel(getProjectRoot(), dir)
			t.Errorf("Package %s has no tests", rel)
		}
	}
	t.Logf("Checked %d packages", len(sources))
}
