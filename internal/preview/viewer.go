package preview

import (
	"errors"
	"fmt"
	"image"
	"os"
	"slices"

	"github.com/disintegration/imaging"
)

var (
	// ErrNoFile is returned when the viewer has nothing to show.
	ErrNoFile = errors.New("no file to preview")
	// ErrNoPages is returned when the current file has no renderable pages.
	ErrNoPages = errors.New("file has no pages")
)

// Viewer tracks the current file, page and zoom over an ordered file list.
// It is not safe for concurrent use.
type Viewer struct {
	renderer Renderer
	files    []string
	zooms    []int
	defZoom  int

	file    int
	page    int
	pages   int
	zoom    int
	loadErr error
}

// NewViewer creates a viewer over files positioned on the first page of the
// first file. zooms is the ascending zoom ladder and defaultZoom must be on it.
func NewViewer(r Renderer, files []string, zooms []int, defaultZoom int) (*Viewer, error) {
	if len(zooms) == 0 {
		return nil, errors.New("zoom ladder is empty")
	}
	ladder := slices.Clone(zooms)
	slices.Sort(ladder)
	idx := slices.Index(ladder, defaultZoom)
	if idx < 0 {
		return nil, fmt.Errorf("default zoom %d%% is not one of %v", defaultZoom, ladder)
	}

	v := &Viewer{
		renderer: r,
		files:    slices.Clone(files),
		zooms:    ladder,
		defZoom:  idx,
		zoom:     idx,
	}
	v.load()
	return v, nil
}

func (v *Viewer) load() {
	v.page, v.pages, v.loadErr = 0, 0, nil
	if len(v.files) == 0 {
		v.loadErr = ErrNoFile
		return
	}
	path := v.files[v.file]
	if _, err := os.Stat(path); err != nil {
		v.loadErr = fmt.Errorf("file not found: %s", path)
		return
	}
	v.pages, v.loadErr = v.renderer.PageCount(path)
}

// Files returns the file list.
func (v *Viewer) Files() []string { return slices.Clone(v.files) }

// File returns the current file path, or "" when the list is empty.
func (v *Viewer) File() string {
	if len(v.files) == 0 {
		return ""
	}
	return v.files[v.file]
}

// FileIndex returns the 0-based position of the current file.
func (v *Viewer) FileIndex() int { return v.file }

// Page returns the 0-based current page.
func (v *Viewer) Page() int { return v.page }

// PageCount returns the number of pages of the current file.
func (v *Viewer) PageCount() int { return v.pages }

// Err returns the error encountered opening the current file.
func (v *Viewer) Err() error { return v.loadErr }

// Zoom returns the current zoom percentage.
func (v *Viewer) Zoom() int { return v.zooms[v.zoom] }

// Position returns a "Page n / m" label.
func (v *Viewer) Position() string {
	if v.pages == 0 {
		return "Page 0 / 0"
	}
	return fmt.Sprintf("Page %d / %d", v.page+1, v.pages)
}

// NextPage advances one page; it reports false on the last page.
func (v *Viewer) NextPage() bool {
	if v.page >= v.pages-1 {
		return false
	}
	v.page++
	return true
}

// PrevPage goes back one page; it reports false on the first page.
func (v *Viewer) PrevPage() bool {
	if v.page <= 0 {
		return false
	}
	v.page--
	return true
}

// SetPage jumps to the 0-based page n.
func (v *Viewer) SetPage(n int) error {
	if n < 0 || n >= v.pages {
		return fmt.Errorf("%w: %d of %d", ErrPageRange, n+1, v.pages)
	}
	v.page = n
	return nil
}

// NextFile moves to the first page of the next file.
func (v *Viewer) NextFile() bool {
	if v.file >= len(v.files)-1 {
		return false
	}
	v.file++
	v.load()
	return true
}

// PrevFile moves to the first page of the previous file.
func (v *Viewer) PrevFile() bool {
	if v.file <= 0 {
		return false
	}
	v.file--
	v.load()
	return true
}

// SelectFile moves to the first page of the file at index.
func (v *Viewer) SelectFile(index int) error {
	if index < 0 || index >= len(v.files) {
		return fmt.Errorf("no file at position %d", index+1)
	}
	v.file = index
	v.load()
	return nil
}

// ZoomIn moves one step up the zoom ladder.
func (v *Viewer) ZoomIn() bool {
	if v.zoom >= len(v.zooms)-1 {
		return false
	}
	v.zoom++
	return true
}

// ZoomOut moves one step down the zoom ladder.
func (v *Viewer) ZoomOut() bool {
	if v.zoom <= 0 {
		return false
	}
	v.zoom--
	return true
}

// SetZoom selects a zoom percentage from the ladder.
func (v *Viewer) SetZoom(percent int) error {
	idx := slices.Index(v.zooms, percent)
	if idx < 0 {
		return fmt.Errorf("zoom %d%% is not one of %v", percent, v.zooms)
	}
	v.zoom = idx
	return nil
}

// ResetZoom returns to the default zoom.
func (v *Viewer) ResetZoom() { v.zoom = v.defZoom }

// Current renders the current page at the current zoom.
func (v *Viewer) Current() (image.Image, error) {
	if v.loadErr != nil {
		return nil, v.loadErr
	}
	if v.pages == 0 {
		return nil, ErrNoPages
	}
	return v.renderer.Render(v.files[v.file], v.page, v.Zoom())
}

// Thumbnail renders the current page scaled to fit within maxSide pixels.
func (v *Viewer) Thumbnail(maxSide int) (image.Image, error) {
	img, err := v.Current()
	if err != nil {
		return nil, err
	}
	return Thumbnail(img, maxSide), nil
}

// Thumbnail scales img down to fit a maxSide square, keeping its aspect ratio.
// Images already small enough are returned unchanged.
func Thumbnail(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || b.Dx() <= maxSide && b.Dy() <= maxSide {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}
