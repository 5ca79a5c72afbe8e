package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ProjectRoot walks up from this file to the directory holding go.mod and
// checks that it looks like this module (cmd/pdfmerge present).
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get caller information")
	}

	for dir := filepath.Dir(filename); ; {
		if FileExists(filepath.Join(dir, "go.mod")) {
			if !FileExists(filepath.Join(dir, "cmd", "pdfmerge")) {
				return "", fmt.Errorf("%s has no cmd/pdfmerge", dir)
			}
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find go.mod above %s", filepath.Dir(filename))
		}
		dir = parent
	}
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o750)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// TempArtifacts lists the converter temp files currently present in dir.
func TempArtifacts(t *testing.T, dir string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, "pdf_merger_temp_*.pdf"))
	if err != nil {
		t.Fatalf("glob temp artifacts: %v", err)
	}
	return matches
}

// AssertNoTempArtifacts fails the test when converter temp files remain in dir.
func AssertNoTempArtifacts(t *testing.T, dir string) {
	t.Helper()

	if left := TempArtifacts(t, dir); len(left) > 0 {
		t.Errorf("temp artifacts left behind in %s: %v", dir, left)
	}
}
