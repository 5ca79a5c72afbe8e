package pdf

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	lpdf "github.com/ledongthuc/pdf"
)

const mediaBox = "/MediaBox"

// GofpdiEngine counts pages with ledongthuc/pdf and merges by importing every
// source page as a template into a new gofpdf document.
type GofpdiEngine struct{}

// NewGofpdiEngine creates the fallback engine.
func NewGofpdiEngine() *GofpdiEngine {
	return &GofpdiEngine{}
}

// Name implements Engine.
func (e *GofpdiEngine) Name() string { return "gofpdi" }

// PageCount implements PageCounter.
func (e *GofpdiEngine) PageCount(path string) (n int, err error) {
	defer recoverEngine(e.Name(), &err)

	f, r, err := lpdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	return r.NumPage(), nil
}

// Merge implements Engine. Each output page keeps its source MediaBox size.
func (e *GofpdiEngine) Merge(inputs []string, output string) (err error) {
	defer recoverEngine(e.Name(), &err)

	if len(inputs) == 0 {
		return ErrEmptyList
	}

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: a4Width, Ht: a4Height},
	})
	doc.SetAutoPageBreak(false, 0)
	imp := gofpdi.NewImporter()

	for _, in := range inputs {
		n, err := e.PageCount(in)
		if err != nil {
			return fmt.Errorf("read %s: %w", in, err)
		}
		for page := 1; page <= n; page++ {
			tpl := imp.ImportPage(doc, in, page, mediaBox)
			box := imp.GetPageSizes()[page][mediaBox]
			w, h := box["w"], box["h"]
			if w <= 0 || h <= 0 {
				w, h = a4Width, a4Height
			}
			doc.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
			imp.UseImportedTemplate(doc, tpl, 0, 0, w, h)
		}
		if doc.Err() {
			return fmt.Errorf("import %s: %w", in, doc.Error())
		}
	}

	return doc.OutputFileAndClose(output)
}

// A4 portrait in points.
const (
	a4Width  = 595.28
	a4Height = 841.89
)
