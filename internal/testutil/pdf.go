package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"
)

// PageHeight is the height in points of every page produced by CreatePDF.
const PageHeight = 400.0

// CreatePDF writes a PDF with one page per width and returns its path.
// Each page is widths[i] x PageHeight points, which makes page order
// observable through page dimensions after a merge.
func CreatePDF(t *testing.T, path string, widths ...float64) string {
	t.Helper()
	require.NotEmpty(t, widths, "at least one page width is required")
	require.NoError(t, WritePDF(path, widths...))
	return path
}

// WritePDF is CreatePDF for callers without a *testing.T.
func WritePDF(path string, widths ...float64) error {
	if len(widths) == 0 {
		return errors.New("at least one page width is required")
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: widths[0], Ht: PageHeight},
	})
	doc.SetFont("Helvetica", "", 14)
	for i, w := range widths {
		doc.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: PageHeight})
		doc.Text(20, 40, fmt.Sprintf("page %d", i+1))
	}
	return doc.OutputFileAndClose(path)
}

// CreatePDFPages writes a PDF with n pages whose widths start at base and grow by one point.
func CreatePDFPages(t *testing.T, path string, n int, base float64) string {
	t.Helper()

	widths := make([]float64, n)
	for i := range widths {
		widths[i] = base + float64(i)
	}
	return CreatePDF(t, path, widths...)
}

// CreateEmptyPDF writes a structurally valid PDF whose page tree has no kids.
func CreateEmptyPDF(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, WriteEmptyPDF(path))
	return path
}

// WriteEmptyPDF is CreateEmptyPDF for callers without a *testing.T.
func WriteEmptyPDF(path string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// CreateCorruptPDF writes a file with a .pdf extension that no reader can parse.
func CreateCorruptPDF(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, EnsureDir(filepath.Dir(path)))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\nthis is not a pdf body\n"), 0o600))
	return path
}

// PageWidths returns the width in points of every page of the document at path.
func PageWidths(t *testing.T, path string) []float64 {
	t.Helper()
	widths, err := ReadPageWidths(path)
	require.NoError(t, err)
	return widths
}

// ReadPageWidths is PageWidths for callers without a *testing.T.
func ReadPageWidths(path string) ([]float64, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, err
	}
	dims, err := ctx.XRefTable.PageDims()
	if err != nil {
		return nil, err
	}

	widths := make([]float64, len(dims))
	for i, d := range dims {
		widths[i] = d.Width
	}
	return widths, nil
}
