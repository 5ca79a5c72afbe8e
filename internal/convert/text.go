package convert

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

// DecodeText returns data as a string, reading it as UTF-8 and falling back
// to Windows-1251 when it is not valid UTF-8.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to read text file (encoding problem): %w", err)
	}
	return string(decoded), nil
}

// SplitLines splits text on newlines, dropping carriage returns and expanding tabs.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		l = strings.TrimSuffix(l, "\r")
		lines[i] = strings.ReplaceAll(l, "\t", "    ")
	}
	return lines
}

// WrapLine splits line into pieces no wider than maxWidth, breaking at
// whitespace. A word wider than maxWidth (a URL, say) is broken between
// runes; only a single rune wider than maxWidth can exceed it.
func WrapLine(line string, maxWidth float64, width func(string) float64) []string {
	if width(line) <= maxWidth {
		return []string{line}
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var out []string
	current := ""
	for _, w := range words {
		candidate := w
		if current != "" {
			candidate = current + " " + w
		}
		if width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			out = append(out, current)
		}
		current = w
		if width(w) > maxWidth {
			chunks := breakWord(w, maxWidth, width)
			out = append(out, chunks[:len(chunks)-1]...)
			current = chunks[len(chunks)-1]
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

// breakWord cuts word into the longest rune runs that fit maxWidth, at
// least one rune each.
func breakWord(word string, maxWidth float64, width func(string) float64) []string {
	runes := []rune(word)
	var out []string
	for start := 0; start < len(runes); {
		end := start + 1
		for end < len(runes) && width(string(runes[start:end+1])) <= maxWidth {
			end++
		}
		out = append(out, string(runes[start:end]))
		start = end
	}
	return out
}

func (c *Converter) textFont() *textFont {
	c.fontOnce.Do(func() {
		font, errs := loadTextFont(c.cfg.Text.FontCandidates)
		for _, err := range errs {
			c.logger.Warn("skipping font candidate", "error", err)
		}
		if font.builtin() {
			c.logger.Warn("no font with Cyrillic support found, using Helvetica; Cyrillic text will be transliterated")
		} else {
			c.logger.Info("using text font", "path", font.path)
		}
		c.font = font
	})
	return c.font
}

func (c *Converter) convertText(src, dst string) error {
	if err := c.caps.RequireText(); err != nil {
		return err
	}

	data, err := os.ReadFile(src) //nolint:gosec // G304: reading user-provided text file path is expected
	if err != nil {
		return fmt.Errorf("failed to read text file: %w", err)
	}
	text, err := DecodeText(data)
	if err != nil {
		return err
	}

	layout := c.cfg.Text
	font := c.textFont()

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	encode := font.apply(doc, layout.FontSize)

	// Lines the font cannot draw are transliterated before measuring.
	drawable := func(s string) string {
		if font.canDraw(s) {
			return s
		}
		return Transliterate(s)
	}
	width := func(s string) float64 { return doc.GetStringWidth(encode(drawable(s))) }
	maxWidth := pageWidth - 2*layout.Margin

	y := layout.Margin
	for _, line := range SplitLines(text) {
		for _, piece := range WrapLine(line, maxWidth, width) {
			if y > pageHeight-layout.Margin-layout.LineHeight {
				doc.AddPage()
				y = layout.Margin
			}
			doc.Text(layout.Margin, y, encode(drawable(piece)))
			y += layout.LineHeight
		}
	}

	if err := doc.OutputFileAndClose(dst); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
