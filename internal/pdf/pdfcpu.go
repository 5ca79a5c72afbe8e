package pdf

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PdfcpuEngine reads and merges documents with pdfcpu.
type PdfcpuEngine struct {
	relaxed bool
}

// NewPdfcpuEngine creates the pdfcpu engine.
func NewPdfcpuEngine(relaxed bool) *PdfcpuEngine {
	return &PdfcpuEngine{relaxed: relaxed}
}

// Name implements Engine.
func (e *PdfcpuEngine) Name() string { return "pdfcpu" }

func (e *PdfcpuEngine) configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationStrict
	if e.relaxed {
		conf.ValidationMode = model.ValidationRelaxed
	}
	return conf
}

// PageCount implements PageCounter.
func (e *PdfcpuEngine) PageCount(path string) (n int, err error) {
	defer recoverEngine(e.Name(), &err)

	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided PDF file path is expected
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	return api.PageCount(f, e.configuration())
}

// Merge implements Engine. A single input is copied unchanged.
func (e *PdfcpuEngine) Merge(inputs []string, output string) (err error) {
	defer recoverEngine(e.Name(), &err)

	switch len(inputs) {
	case 0:
		return ErrEmptyList
	case 1:
		return copyFile(inputs[0], output)
	}

	if err := api.MergeCreateFile(inputs, output, false, e.configuration()); err != nil {
		return fmt.Errorf("failed to merge PDFs: %w", err)
	}
	return nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: reading user-provided PDF file path is expected
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) //nolint:gosec // G304: output path chosen by the caller
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	return out.Close()
}
