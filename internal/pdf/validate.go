package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationResult is the outcome of checking a single file.
type ValidationResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Validator decides whether files are non-empty, readable PDFs.
type Validator struct {
	counter PageCounter
}

// NewValidator creates a validator reading page counts through counter.
func NewValidator(counter PageCounter) *Validator {
	return &Validator{counter: counter}
}

// IsValidPDF returns nil when path exists, has a .pdf extension and at least one page.
func (v *Validator) IsValidPDF(path string) error {
	if _, err := os.Stat(path); err != nil {
		return ErrFileNotFound
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ErrNotPDF
	}

	n, err := v.counter.PageCount(path)
	if err != nil {
		return fmt.Errorf("cannot read PDF: %w", err)
	}
	if n < 1 {
		return ErrEmptyPDF
	}
	return nil
}

// Check validates path and reports the outcome as a ValidationResult.
func (v *Validator) Check(path string) ValidationResult {
	if err := v.IsValidPDF(path); err != nil {
		return ValidationResult{Path: path, Valid: false, Message: err.Error()}
	}
	return ValidationResult{Path: path, Valid: true, Message: "PDF file is valid"}
}

// ValidateFileList requires at least two files and validates each in order,
// stopping at the first invalid one.
func (v *Validator) ValidateFileList(paths []string) error {
	if len(paths) == 0 {
		return ErrEmptyList
	}
	if len(paths) < 2 {
		return ErrTooFewFiles
	}

	for _, p := range paths {
		if err := v.IsValidPDF(p); err != nil {
			return fmt.Errorf("file %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}
