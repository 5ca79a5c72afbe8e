package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/text/encoding/charmap"
)

// CreateTestImage creates a simple test image with the specified dimensions and color.
func CreateTestImage(width, height int, backgroundColor color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)
	return img
}

// CreateTransparentImage creates an NRGBA image whose left half is fully transparent.
func CreateTransparentImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 20, B: 20, A: 255})
		}
	}
	return img
}

// SaveImage encodes img to path, choosing the format from the extension.
func SaveImage(t *testing.T, img image.Image, path string) string {
	t.Helper()
	require.NoError(t, WriteImage(img, path))
	return path
}

// WriteImage is SaveImage for callers without a *testing.T.
func WriteImage(img image.Image, path string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	f, err := os.Create(path) //nolint:gosec // G304: test fixture path
	if err != nil {
		return err
	}

	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// ImageFixture returns the solid-color image CreateImageFile writes.
func ImageFixture(width, height int) image.Image {
	return CreateTestImage(width, height, color.RGBA{R: 30, G: 90, B: 160, A: 255})
}

// CreateImageFile writes a solid-color image of the given size to path.
func CreateImageFile(t *testing.T, path string, width, height int) string {
	t.Helper()

	return SaveImage(t, ImageFixture(width, height), path)
}

// CreateTextFile writes UTF-8 content to path.
func CreateTextFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, EnsureDir(filepath.Dir(path)))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// CreateCP1251TextFile writes content encoded as Windows-1251 to path.
func CreateCP1251TextFile(t *testing.T, path, content string) string {
	t.Helper()

	encoded, err := charmap.Windows1251.NewEncoder().String(content)
	require.NoError(t, err)
	return CreateTextFile(t, path, encoded)
}
