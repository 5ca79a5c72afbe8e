// Package worker runs merge jobs off the caller's goroutine, one at a time,
// and reports their outcome as a short stream of events.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/pdfmerge/internal/pdf"
)

var (
	// ErrNoPages is returned when the inputs contain no pages at all.
	ErrNoPages = errors.New("no pages to merge")
	// ErrOutputMissing is returned when the engine reported success but no file was written.
	ErrOutputMissing = errors.New("could not create output file")
	// ErrBusy is returned when a merge is already in flight.
	ErrBusy = errors.New("a merge is already running")
)

// Result describes a completed merge.
type Result struct {
	Output   string        `json:"output"`
	Pages    int           `json:"pages"`
	Inputs   int           `json:"inputs"`
	Engine   string        `json:"engine"`
	Duration time.Duration `json:"duration"`
}

// Merger concatenates documents in list order.
type Merger struct {
	engines *pdf.Strategy
	logger  *slog.Logger
}

// NewMerger creates a merger backed by the given engine strategy.
func NewMerger(engines *pdf.Strategy, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{engines: engines, logger: logger}
}

// Merge writes every page of inputs, file by file, to output. It stops at
// the first missing input and never creates output when there is nothing to
// write. The engine writes to a staging file next to output which replaces
// output only on success, so a failed merge leaves an existing output intact.
// Library panics are returned as errors.
func (m *Merger) Merge(inputs []string, output string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("merge failed: recovered from panic: %v", r)
		}
	}()

	start := time.Now()
	total := 0
	withPages := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			return Result{}, fmt.Errorf("%w: %s", pdf.ErrFileNotFound, in)
		}
		n, err := m.engines.PageCount(in)
		if err != nil {
			return Result{}, fmt.Errorf("read %s: %w", in, err)
		}
		if n == 0 {
			m.logger.Debug("skipping input without pages", "path", in)
			continue
		}
		total += n
		withPages = append(withPages, in)
	}
	if total == 0 {
		return Result{}, ErrNoPages
	}

	engine, err := m.engines.MergeEngine()
	if err != nil {
		return Result{}, err
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return Result{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	staged, err := stagingPath(output)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = os.Remove(staged) }()

	if err := engine.Merge(withPages, staged); err != nil {
		return Result{}, fmt.Errorf("merge with %s: %w", engine.Name(), err)
	}

	if _, err := os.Stat(staged); err != nil {
		return Result{}, ErrOutputMissing
	}
	if err := os.Rename(staged, output); err != nil {
		return Result{}, fmt.Errorf("failed to write output file: %w", err)
	}

	res = Result{
		Output:   output,
		Pages:    total,
		Inputs:   len(inputs),
		Engine:   engine.Name(),
		Duration: time.Since(start),
	}
	m.logger.Info("merge completed", "output", output, "pages", total, "inputs", len(inputs), "engine", engine.Name())
	return res, nil
}

// stagingPath reserves a unique, not yet existing file name in output's directory.
func stagingPath(output string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(output), ".pdfmerge-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	return name, nil
}
