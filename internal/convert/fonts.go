package convert

import (
	"os"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/charmap"
)

const textFontFamily = "textfont"

// textFont is the font chosen for text conversion. A nil face means the
// built-in Helvetica with Windows-1252 encoding.
type textFont struct {
	path string
	data []byte
	face *sfnt.Font
}

// loadTextFont returns the first candidate that exists and parses as a
// TrueType/OpenType font.
func loadTextFont(candidates []string) (*textFont, []error) {
	var errs []error
	for _, p := range candidates {
		data, err := os.ReadFile(p) //nolint:gosec // G304: configured font path
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, err)
			}
			continue
		}
		face, err := sfnt.Parse(data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return &textFont{path: p, data: data, face: face}, errs
	}
	return &textFont{}, errs
}

// builtin reports whether the fallback core font is in use.
func (f *textFont) builtin() bool { return f.face == nil }

// apply registers and selects the font on doc and returns the string
// encoder to use for drawing.
func (f *textFont) apply(doc *gofpdf.Fpdf, size float64) func(string) string {
	if f.builtin() {
		doc.SetFont("Helvetica", "", size)
		return doc.UnicodeTranslatorFromDescriptor("")
	}
	doc.AddUTF8FontFromBytes(textFontFamily, "", f.data)
	doc.SetFont(textFontFamily, "", size)
	return func(s string) string { return s }
}

// canDraw reports whether every visible rune of s has a glyph in the font.
func (f *textFont) canDraw(s string) bool {
	var buf sfnt.Buffer
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsGraphic(r) {
			continue
		}
		if f.builtin() {
			if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
				return false
			}
			continue
		}
		idx, err := f.face.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return false
		}
	}
	return true
}
