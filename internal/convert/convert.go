// Package convert turns images, Word documents and plain text files into
// temporary single-purpose PDFs that can be merged like any other input.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/pdfmerge/internal/capability"
	"github.com/MeKo-Tech/pdfmerge/internal/config"
	"github.com/MeKo-Tech/pdfmerge/internal/pdf"
)

// TempPrefix starts the name of every artifact created by a Converter.
const TempPrefix = "pdf_merger_temp_"

// ErrUnsupportedFormat is returned for extensions outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Kind groups extensions by conversion strategy.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
	KindWord  Kind = "word"
	KindText  Kind = "text"
)

var kinds = map[string]Kind{
	"pdf":  KindPDF,
	"doc":  KindWord,
	"docx": KindWord,
	"txt":  KindText,
	"jpg":  KindImage,
	"jpeg": KindImage,
	"png":  KindImage,
	"bmp":  KindImage,
}

// SupportedExtensions lists accepted input extensions in display order.
var SupportedExtensions = []string{"pdf", "doc", "docx", "txt", "jpg", "jpeg", "png", "bmp"}

// FilterGroup is a named set of extensions for file pickers.
type FilterGroup struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// FileFilter returns the file-picker groups, starting with every supported format.
func FileFilter() []FilterGroup {
	return []FilterGroup{
		{Name: "All supported files", Extensions: SupportedExtensions},
		{Name: "PDF files", Extensions: []string{"pdf"}},
		{Name: "Word documents", Extensions: []string{"doc", "docx"}},
		{Name: "Text files", Extensions: []string{"txt"}},
		{Name: "Images", Extensions: []string{"jpg", "jpeg", "png", "bmp"}},
	}
}

// Ext returns the lower-case extension of path without the dot.
func Ext(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// KindOf returns the conversion kind for path and whether it is supported.
func KindOf(path string) (Kind, bool) {
	k, ok := kinds[Ext(path)]
	return k, ok
}

// IsSupported reports whether path has a supported extension.
func IsSupported(path string) bool {
	_, ok := KindOf(path)
	return ok
}

// Converter converts files to PDF and owns the artifacts it creates.
type Converter struct {
	caps    capability.Set
	cfg     config.ConvertConfig
	tempDir string
	logger  *slog.Logger

	seq atomic.Uint64

	mu        sync.Mutex
	tempFiles []string

	fontOnce sync.Once
	font     *textFont
}

// New creates a converter for the given capabilities and settings.
func New(caps capability.Set, cfg config.ConvertConfig, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Converter{caps: caps, cfg: cfg, tempDir: tempDir, logger: logger}
}

// TempDir returns the directory artifacts are written to.
func (c *Converter) TempDir() string { return c.tempDir }

// ConvertToPDF returns a PDF path for path. PDFs are returned unchanged;
// other supported formats are converted into a new tracked artifact.
func (c *Converter) ConvertToPDF(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", pdf.ErrFileNotFound, path)
	}

	kind, ok := KindOf(path)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, Ext(path))
	}
	if kind == KindPDF {
		return path, nil
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dst := c.nextTempPath(stem)
	start := time.Now()

	var err error
	switch kind {
	case KindImage:
		err = c.convertImage(path, dst)
	case KindWord:
		err = c.convertWord(ctx, path, dst)
	case KindText:
		err = c.convertText(path, dst)
	}

	conversionDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		conversionsTotal.WithLabelValues(string(kind), "error").Inc()
		if rmErr := os.Remove(dst); rmErr != nil && !os.IsNotExist(rmErr) {
			c.logger.Warn("failed to remove partial artifact", "path", dst, "error", rmErr)
		}
		return "", fmt.Errorf("convert %s: %w", filepath.Base(path), err)
	}

	conversionsTotal.WithLabelValues(string(kind), "success").Inc()
	c.track(dst)
	c.logger.Debug("converted to PDF", "source", path, "artifact", dst, "kind", kind)
	return dst, nil
}

// Export converts path and writes the PDF to dst. The intermediate artifact
// is released afterwards, so dst is not tracked by the converter.
func (c *Converter) Export(ctx context.Context, path, dst string) error {
	res, err := c.ConvertToPDF(ctx, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if res == path {
		err = copyFile(path, dst)
	} else {
		err = moveFile(res, dst)
		c.Discard(res)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

// nextTempPath returns a fresh artifact path; the counter is never reused.
func (c *Converter) nextTempPath(stem string) string {
	n := c.seq.Add(1) - 1
	return filepath.Join(c.tempDir, fmt.Sprintf("%s%s_%d.pdf", TempPrefix, stem, n))
}

func (c *Converter) track(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tempFiles = append(c.tempFiles, path)
}

// Owns reports whether path is an artifact tracked by this converter.
func (c *Converter) Owns(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.tempFiles {
		if p == path {
			return true
		}
	}
	return false
}

// TempFiles returns a copy of the tracked artifact paths.
func (c *Converter) TempFiles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.tempFiles...)
}

// Discard deletes a single tracked artifact immediately and stops tracking it.
// Untracked paths are left alone.
func (c *Converter) Discard(path string) {
	c.mu.Lock()
	idx := -1
	for i, p := range c.tempFiles {
		if p == path {
			idx = i
			break
		}
	}
	if idx >= 0 {
		c.tempFiles = append(c.tempFiles[:idx], c.tempFiles[idx+1:]...)
	}
	c.mu.Unlock()

	if idx >= 0 {
		c.remove(path)
	}
}

// CleanupTempFiles deletes every tracked artifact. Failures are logged, and
// the tracking list is cleared either way, so a second call is a no-op.
func (c *Converter) CleanupTempFiles() {
	c.mu.Lock()
	files := c.tempFiles
	c.tempFiles = nil
	c.mu.Unlock()

	for _, f := range files {
		c.remove(f)
	}
}

func (c *Converter) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}

// MissingDependencies lists unavailable optional conversion components.
func (c *Converter) MissingDependencies() []string {
	return c.caps.Missing()
}
