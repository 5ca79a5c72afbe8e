package preview

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pdfmerge/internal/testutil"
)

var ladder = []int{50, 75, 100, 125, 150, 200}

type fakeRenderer struct {
	pages map[string]int
	calls []string
}

func (f *fakeRenderer) PageCount(path string) (int, error) {
	n, ok := f.pages[path]
	if !ok {
		return 0, errors.New("cannot open")
	}
	return n, nil
}

func (f *fakeRenderer) Render(path string, page, zoom int) (image.Image, error) {
	f.calls = append(f.calls, path)
	side := 10 * zoom
	return image.NewRGBA(image.Rect(0, 0, side, side*2)), nil
}

func viewerFiles(t *testing.T) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	a := testutil.CreateTextFile(t, filepath.Join(dir, "a.pdf"), "x")
	b := testutil.CreateTextFile(t, filepath.Join(dir, "b.pdf"), "x")
	c := testutil.CreateTextFile(t, filepath.Join(dir, "c.pdf"), "x")
	return a, b, c
}

func TestNewViewerValidatesZoom(t *testing.T) {
	_, err := NewViewer(&fakeRenderer{}, nil, nil, 100)
	assert.Error(t, err)

	_, err = NewViewer(&fakeRenderer{}, nil, ladder, 90)
	assert.Error(t, err)

	v, err := NewViewer(&fakeRenderer{}, nil, []int{200, 50, 100}, 100)
	require.NoError(t, err)
	assert.True(t, v.ZoomIn())
	assert.Equal(t, 200, v.Zoom())
}

func TestViewerPageNavigation(t *testing.T) {
	a, _, _ := viewerFiles(t)
	v, err := NewViewer(&fakeRenderer{pages: map[string]int{a: 3}}, []string{a}, ladder, 100)
	require.NoError(t, err)

	assert.Equal(t, 3, v.PageCount())
	assert.Equal(t, "Page 1 / 3", v.Position())
	assert.False(t, v.PrevPage())

	assert.True(t, v.NextPage())
	assert.True(t, v.NextPage())
	assert.False(t, v.NextPage())
	assert.Equal(t, 2, v.Page())
	assert.Equal(t, "Page 3 / 3", v.Position())

	assert.True(t, v.PrevPage())
	assert.Equal(t, 1, v.Page())

	require.NoError(t, v.SetPage(0))
	assert.ErrorIs(t, v.SetPage(3), ErrPageRange)
}

func TestViewerFileNavigation(t *testing.T) {
	a, b, c := viewerFiles(t)
	r := &fakeRenderer{pages: map[string]int{a: 2, b: 5, c: 1}}
	v, err := NewViewer(r, []string{a, b, c}, ladder, 100)
	require.NoError(t, err)

	assert.True(t, v.NextPage())
	assert.False(t, v.PrevFile())

	assert.True(t, v.NextFile())
	assert.Equal(t, b, v.File())
	assert.Equal(t, 0, v.Page(), "switching files resets the page")
	assert.Equal(t, 5, v.PageCount())

	require.NoError(t, v.SelectFile(2))
	assert.Equal(t, c, v.File())
	assert.False(t, v.NextFile())
	assert.Error(t, v.SelectFile(3))

	assert.True(t, v.PrevFile())
	assert.Equal(t, 1, v.FileIndex())
}

func TestViewerZoom(t *testing.T) {
	a, _, _ := viewerFiles(t)
	v, err := NewViewer(&fakeRenderer{pages: map[string]int{a: 1}}, []string{a}, ladder, 100)
	require.NoError(t, err)

	assert.True(t, v.ZoomIn())
	assert.Equal(t, 125, v.Zoom())
	assert.True(t, v.ZoomIn())
	assert.True(t, v.ZoomIn())
	assert.False(t, v.ZoomIn())
	assert.Equal(t, 200, v.Zoom())

	v.ResetZoom()
	assert.Equal(t, 100, v.Zoom())

	assert.True(t, v.ZoomOut())
	assert.True(t, v.ZoomOut())
	assert.False(t, v.ZoomOut())
	assert.Equal(t, 50, v.Zoom())

	require.NoError(t, v.SetZoom(150))
	assert.Error(t, v.SetZoom(110))

	img, err := v.Current()
	require.NoError(t, err)
	assert.Equal(t, 1500, img.Bounds().Dx())
}

func TestViewerCurrentErrors(t *testing.T) {
	a, b, _ := viewerFiles(t)
	missing := filepath.Join(t.TempDir(), "missing.pdf")
	r := &fakeRenderer{pages: map[string]int{a: 0}}

	empty, err := NewViewer(r, nil, ladder, 100)
	require.NoError(t, err)
	_, err = empty.Current()
	assert.ErrorIs(t, err, ErrNoFile)
	assert.Equal(t, "", empty.File())

	v, err := NewViewer(r, []string{a, b, missing}, ladder, 100)
	require.NoError(t, err)

	_, err = v.Current()
	assert.ErrorIs(t, err, ErrNoPages)
	assert.Equal(t, "Page 0 / 0", v.Position())

	require.True(t, v.NextFile())
	_, err = v.Current()
	assert.ErrorContains(t, err, "cannot open")

	require.True(t, v.NextFile())
	_, err = v.Current()
	assert.ErrorContains(t, err, "file not found")
	assert.Empty(t, r.calls)
}

func TestThumbnail(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Same(t, small, Thumbnail(small, 256))
	assert.Same(t, small, Thumbnail(small, 0))

	big := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	thumb := Thumbnail(big, 200)
	assert.Equal(t, 200, thumb.Bounds().Dx())
	assert.Equal(t, 100, thumb.Bounds().Dy())

	a, _, _ := viewerFiles(t)
	v, err := NewViewer(&fakeRenderer{pages: map[string]int{a: 1}}, []string{a}, ladder, 100)
	require.NoError(t, err)
	img, err := v.Thumbnail(250)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 125, 250), img.Bounds())
}
