package support

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/pdfmerge/internal/testutil"
)

func parseWidths(list string) ([]float64, error) {
	var widths []float64
	for _, part := range strings.Split(list, ",") {
		w, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid page width %q: %w", part, err)
		}
		widths = append(widths, w)
	}
	return widths, nil
}

// aPDFWithPageWidths writes a PDF whose pages have the given widths.
func (testCtx *TestContext) aPDFWithPageWidths(name, list string) error {
	widths, err := parseWidths(list)
	if err != nil {
		return err
	}
	return testutil.WritePDF(testCtx.Path(name), widths...)
}

// aPDFWithPages writes a PDF with n pages.
func (testCtx *TestContext) aPDFWithPages(name string, n int) error {
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = 300 + float64(i)
	}
	return testutil.WritePDF(testCtx.Path(name), widths...)
}

func (testCtx *TestContext) anEmptyPDF(name string) error {
	return testutil.WriteEmptyPDF(testCtx.Path(name))
}

func (testCtx *TestContext) aCorruptPDF(name string) error {
	return testCtx.aFileContaining(name, "%PDF-1.4\nthis is not a pdf body\n")
}

func (testCtx *TestContext) anImageOfSize(name string, width, height int) error {
	return testutil.WriteImage(testutil.ImageFixture(width, height), testCtx.Path(name))
}

func (testCtx *TestContext) aFileContaining(name, content string) error {
	path := testCtx.Path(name)
	if err := testutil.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

// thePDFShouldHavePages verifies the page count of a produced PDF.
func (testCtx *TestContext) thePDFShouldHavePages(name string, n int) error {
	widths, err := testutil.ReadPageWidths(testCtx.Path(name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(widths) != n {
		return fmt.Errorf("expected %d pages in %s, got %d", n, name, len(widths))
	}
	return nil
}

// thePageWidthsShouldBe compares page widths; "*" matches any width.
func (testCtx *TestContext) thePageWidthsShouldBe(name, list string) error {
	got, err := testutil.ReadPageWidths(testCtx.Path(name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	want := strings.Split(list, ",")
	if len(got) != len(want) {
		return fmt.Errorf("expected %d pages in %s, got %d", len(want), name, len(got))
	}
	for i, w := range want {
		w = strings.TrimSpace(w)
		if w == "*" {
			continue
		}
		expected, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return fmt.Errorf("invalid page width %q: %w", w, err)
		}
		if math.Abs(got[i]-expected) > 0.5 {
			return fmt.Errorf("page %d of %s: expected width %v, got %v", i+1, name, expected, got[i])
		}
	}
	return nil
}

// noConversionArtifactsShouldRemain verifies every temp artifact was deleted.
func (testCtx *TestContext) noConversionArtifactsShouldRemain() error {
	matches, err := filepath.Glob(filepath.Join(testCtx.ArtifactDir, "pdf_merger_temp_*.pdf"))
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		return fmt.Errorf("conversion artifacts left behind: %v", matches)
	}
	return nil
}

// theDirectoryShouldContainPNGFiles counts rendered previews.
func (testCtx *TestContext) theDirectoryShouldContainPNGFiles(name string, n int) error {
	matches, err := filepath.Glob(filepath.Join(testCtx.Path(name), "*.png"))
	if err != nil {
		return err
	}
	if len(matches) != n {
		return fmt.Errorf("expected %d PNG files in %s, got %d: %v", n, name, len(matches), matches)
	}
	return nil
}

// RegisterDocumentSteps registers fixture and document assertion steps.
func (testCtx *TestContext) RegisterDocumentSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a PDF "([^"]*)" with page widths "([^"]*)"$`, testCtx.aPDFWithPageWidths)
	sc.Step(`^a PDF "([^"]*)" with (\d+) pages?$`, testCtx.aPDFWithPages)
	sc.Step(`^an empty PDF "([^"]*)"$`, testCtx.anEmptyPDF)
	sc.Step(`^a corrupt PDF "([^"]*)"$`, testCtx.aCorruptPDF)
	sc.Step(`^an image "([^"]*)" of (\d+)x(\d+) pixels$`, testCtx.anImageOfSize)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, testCtx.aFileContaining)
	sc.Step(`^the PDF "([^"]*)" should have (\d+) pages?$`, testCtx.thePDFShouldHavePages)
	sc.Step(`^the page widths of "([^"]*)" should be "([^"]*)"$`, testCtx.thePageWidthsShouldBe)
	sc.Step(`^no conversion artifacts should remain$`, testCtx.noConversionArtifactsShouldRemain)
	sc.Step(`^the directory "([^"]*)" should contain (\d+) PNG files?$`, testCtx.theDirectoryShouldContainPNGFiles)
}
