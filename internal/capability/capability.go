// Package capability records which optional conversion and PDF tooling is
// usable in the current process. The set is computed once at startup and
// handed to the components that depend on it.
package capability

import (
	"fmt"
	"os/exec"

	"github.com/MeKo-Tech/pdfmerge/internal/config"
)

// PDFEngine identifies which PDF engine serves as the primary one.
type PDFEngine string

const (
	// EnginePrimary means pdfcpu handles reading and merging.
	EnginePrimary PDFEngine = "primary"
	// EngineFallback means only the gofpdf/gofpdi page-copy engine is used.
	EngineFallback PDFEngine = "fallback"
	// EngineNone means no PDF engine is usable.
	EngineNone PDFEngine = "none"
)

// WordCommands lists the document converters probed on PATH, in order.
var WordCommands = []string{"soffice", "libreoffice", "unoconv"}

// LookPath is the executable lookup used by Detect.
var LookPath = exec.LookPath

// Set is the capability set shared by converter, engines and front ends.
type Set struct {
	PDFEngine      PDFEngine `json:"pdf_engine"`
	Imaging        bool      `json:"imaging"`
	TextGeneration bool      `json:"text_generation"`
	WordConversion bool      `json:"word_conversion"`
	WordCommand    string    `json:"word_command,omitempty"`
}

// MissingDependencyError reports an optional component that is not available.
type MissingDependencyError struct {
	Component string
	Install   string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s is not available: %s", e.Component, e.Install)
}

// Detect computes the capability set for the given configuration.
func Detect(cfg config.Config) Set {
	s := Set{
		PDFEngine:      EnginePrimary,
		Imaging:        cfg.Convert.ImagesEnabled,
		TextGeneration: cfg.Convert.TextEnabled,
	}
	if cfg.Engine.Preferred == config.EngineGofpdi {
		s.PDFEngine = EngineFallback
	}

	if cfg.Convert.Word.Enabled {
		candidates := WordCommands
		if cfg.Convert.Word.Command != "" {
			candidates = []string{cfg.Convert.Word.Command}
		}
		for _, c := range candidates {
			if p, err := LookPath(c); err == nil {
				s.WordConversion = true
				s.WordCommand = p
				break
			}
		}
	}

	return s
}

// RequireImaging returns an error when image conversion is unavailable.
func (s Set) RequireImaging() error {
	if !s.Imaging {
		return &MissingDependencyError{
			Component: "image conversion",
			Install:   "enable convert.images_enabled in pdfmerge.yaml",
		}
	}
	return nil
}

// RequireText returns an error when text conversion is unavailable.
func (s Set) RequireText() error {
	if !s.TextGeneration {
		return &MissingDependencyError{
			Component: "text conversion",
			Install:   "enable convert.text_enabled in pdfmerge.yaml",
		}
	}
	return nil
}

// RequireWord returns an error when Word conversion is unavailable.
func (s Set) RequireWord() error {
	if !s.WordConversion {
		return &MissingDependencyError{
			Component: "Word conversion",
			Install:   "install LibreOffice (soffice) or unoconv and make sure it is on PATH",
		}
	}
	return nil
}

// RequirePDF returns an error when no PDF engine is usable.
func (s Set) RequirePDF() error {
	if s.PDFEngine == EngineNone {
		return &MissingDependencyError{
			Component: "PDF engine",
			Install:   "set engine.preferred to pdfcpu or gofpdi",
		}
	}
	return nil
}

// Missing returns one actionable message per unavailable component.
func (s Set) Missing() []string {
	var out []string
	for _, err := range []error{s.RequirePDF(), s.RequireImaging(), s.RequireText(), s.RequireWord()} {
		if err != nil {
			out = append(out, err.Error())
		}
	}
	return out
}
