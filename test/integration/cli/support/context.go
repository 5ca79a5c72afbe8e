package support

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	WorkingDir  string
	TempDir     string
	ArtifactDir string
	EnvVars     []string

	// Server state
	HTTPTestServer *HTTPTestServerWrapper

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPBody       []byte
	LastHTTPHeaders    map[string]string

	// Test artifacts
	CreatedDirectories []string
}

// NewTestContext creates a new test context.
func NewTestContext() (*TestContext, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// Commands run from the project root.
	currentDir := workingDir
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "go.mod")); err == nil {
			workingDir = currentDir
			break
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	tempDir, err := os.MkdirTemp("", "pdfmerge-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	artifactDir := filepath.Join(tempDir, ".artifacts")
	if err := os.MkdirAll(artifactDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	ctx := &TestContext{
		WorkingDir:  workingDir,
		TempDir:     tempDir,
		ArtifactDir: artifactDir,
		EnvVars:     []string{},
	}
	// Conversion artifacts land where scenarios can inspect them, and Word
	// conversion is off so results do not depend on an installed office suite.
	ctx.AddEnvVar("PDFMERGE_CONVERT_TEMP_DIR", artifactDir)
	ctx.AddEnvVar("PDFMERGE_CONVERT_WORD_ENABLED", "false")

	return ctx, nil
}

// Cleanup removes all temporary files and directories created during tests.
func (testCtx *TestContext) Cleanup() error {
	var errs []error

	if err := testCtx.StopServer(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop server: %w", err))
	}

	for _, dir := range testCtx.CreatedDirectories {
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove directory %s: %w", dir, err))
		}
	}

	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err))
	}

	return errors.Join(errs...)
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}

// TrackDirectory adds a directory to be cleaned up after tests.
func (testCtx *TestContext) TrackDirectory(dirname string) {
	absPath := dirname
	if !filepath.IsAbs(dirname) {
		absPath = filepath.Join(testCtx.WorkingDir, dirname)
	}
	testCtx.CreatedDirectories = append(testCtx.CreatedDirectories, absPath)
}

// Path resolves a scenario file name inside the scenario temp directory.
func (testCtx *TestContext) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.TempDir, name)
}

// substituteCommandVariables replaces {dir} with the scenario temp directory.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	return strings.ReplaceAll(command, "{dir}", testCtx.TempDir)
}
