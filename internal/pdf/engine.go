// Package pdf reads, validates, decrypts and merges PDF documents. Two engines
// are available: pdfcpu is preferred, and a gofpdf/gofpdi page-copy engine
// backed by ledongthuc/pdf serves as the fallback.
package pdf

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/pdfmerge/internal/capability"
	"github.com/MeKo-Tech/pdfmerge/internal/config"
)

// PageCounter reports the number of pages in a document.
type PageCounter interface {
	PageCount(path string) (int, error)
}

// Engine is a PDF library able to count pages and concatenate documents.
type Engine interface {
	PageCounter
	Name() string
	Merge(inputs []string, output string) error
}

// Strategy tries the primary engine first and the fallback second.
type Strategy struct {
	Primary  Engine
	Fallback Engine
	logger   *slog.Logger
}

// NewStrategy builds the engine pair for the given capability set and configuration.
func NewStrategy(caps capability.Set, cfg config.EngineConfig, logger *slog.Logger) *Strategy {
	primary := Engine(NewPdfcpuEngine(cfg.RelaxedValidation))
	fallback := Engine(NewGofpdiEngine())

	switch caps.PDFEngine {
	case capability.EngineFallback:
		primary, fallback = fallback, primary
	case capability.EngineNone:
		primary, fallback = nil, nil
	}
	if !cfg.FallbackEnabled {
		fallback = nil
	}

	return NewStrategyWithEngines(primary, fallback, logger)
}

// NewStrategyWithEngines builds a strategy from explicit engines. fallback may be nil.
func NewStrategyWithEngines(primary, fallback Engine, logger *slog.Logger) *Strategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Strategy{Primary: primary, Fallback: fallback, logger: logger}
}

// PageCount returns the page count from the primary engine, retrying once with
// the fallback on any failure. When both fail the error carries both causes.
func (s *Strategy) PageCount(path string) (int, error) {
	if s.Primary == nil {
		return 0, (capability.Set{PDFEngine: capability.EngineNone}).RequirePDF()
	}

	n, err := s.Primary.PageCount(path)
	if err == nil {
		return n, nil
	}
	if s.Fallback == nil {
		return 0, fmt.Errorf("%s: %w", s.Primary.Name(), err)
	}

	n, ferr := s.Fallback.PageCount(path)
	if ferr != nil {
		return 0, errors.Join(
			fmt.Errorf("%s: %w", s.Primary.Name(), err),
			fmt.Errorf("%s: %w", s.Fallback.Name(), ferr),
		)
	}

	s.logger.Debug("primary engine failed, fallback succeeded",
		"path", path, "primary", s.Primary.Name(), "fallback", s.Fallback.Name(), "error", err)
	return n, nil
}

// MergeEngine returns the engine used for merging. The fallback is only used
// when no primary engine is available.
func (s *Strategy) MergeEngine() (Engine, error) {
	if s.Primary != nil {
		return s.Primary, nil
	}
	if s.Fallback != nil {
		return s.Fallback, nil
	}
	return nil, (capability.Set{PDFEngine: capability.EngineNone}).RequirePDF()
}

// recoverEngine converts a library panic into an error.
func recoverEngine(name string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: recovered from panic: %v", name, r)
	}
}
