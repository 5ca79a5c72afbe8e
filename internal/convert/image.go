package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

// A4 portrait in points.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
)

// Placement is the position and size of an image on the page, in points.
type Placement struct {
	X, Y, W, H float64
}

// FitImage scales an image of imgW x imgH pixels (1px = 1pt) into the page
// minus margin on every side without upscaling, centered.
func FitImage(imgW, imgH int, margin float64) Placement {
	scale := min((pageWidth-2*margin)/float64(imgW), (pageHeight-2*margin)/float64(imgH), 1.0)
	w := float64(imgW) * scale
	h := float64(imgH) * scale
	return Placement{X: (pageWidth - w) / 2, Y: (pageHeight - h) / 2, W: w, H: h}
}

// flatten drops alpha by compositing img over white.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

func (c *Converter) convertImage(src, dst string) error {
	if err := c.caps.RequireImaging(); err != nil {
		return err
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("image has no pixels")
	}
	rgb := flatten(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rgb, imaging.JPEG, imaging.JPEGQuality(c.cfg.Image.JPEGQuality)); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	doc.RegisterImageOptionsReader("source", opts, &buf)
	p := FitImage(b.Dx(), b.Dy(), c.cfg.Image.Margin)
	doc.ImageOptions("source", p.X, p.Y, p.W, p.H, false, opts, 0, "")

	if err := doc.OutputFileAndClose(dst); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
