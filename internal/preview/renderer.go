// Package preview renders PDF pages for inspection before a merge and
// summarizes the files queued for merging.
package preview

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// ErrPageRange is returned for page numbers outside the document.
var ErrPageRange = errors.New("page out of range")

// baseDPI is the resolution of a page rendered at 100% zoom.
const baseDPI = 72.0

// Renderer rasterizes PDF pages. Pages are 0-based; zoom is a percentage.
type Renderer interface {
	PageCount(path string) (int, error)
	Render(path string, page, zoom int) (image.Image, error)
}

// Releaser is implemented by renderers that keep documents open between calls.
type Releaser interface {
	Release(path string) error
}

// Release tells r that path is no longer needed. Renderers that hold no
// documents open are left alone.
func Release(r Renderer, path string) error {
	if rel, ok := r.(Releaser); ok {
		return rel.Release(path)
	}
	return nil
}

// FitzRenderer renders pages with MuPDF. The most recently used document is
// kept open so paging through one file does not reopen it.
type FitzRenderer struct {
	mu   sync.Mutex
	path string
	doc  *fitz.Document
}

// NewFitzRenderer creates a MuPDF-backed renderer.
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

func (r *FitzRenderer) open(path string) (doc *fitz.Document, err error) {
	if r.doc != nil && r.path == path {
		return r.doc, nil
	}
	r.closeLocked()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("open %s: recovered from panic: %v", path, p)
		}
	}()
	doc, err = fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r.doc, r.path = doc, path
	return doc, nil
}

// PageCount returns the number of pages in path.
func (r *FitzRenderer) PageCount(path string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.open(path)
	if err != nil {
		return 0, err
	}
	return doc.NumPage(), nil
}

// Render rasterizes page at zoom percent of 72 DPI.
func (r *FitzRenderer) Render(path string, page, zoom int) (image.Image, error) {
	if zoom <= 0 {
		return nil, fmt.Errorf("invalid zoom %d%%", zoom)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.open(path)
	if err != nil {
		return nil, err
	}
	if page < 0 || page >= doc.NumPage() {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, page+1, doc.NumPage())
	}

	img, err := doc.ImageDPI(page, baseDPI*float64(zoom)/100)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page+1, err)
	}
	return img, nil
}

// Release closes the open document if it is path.
func (r *FitzRenderer) Release(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.path != path {
		return nil
	}
	return r.closeLocked()
}

// Close releases the open document.
func (r *FitzRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *FitzRenderer) closeLocked() error {
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc, r.path = nil, ""
	return err
}
