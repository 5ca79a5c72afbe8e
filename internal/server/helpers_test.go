package server

import (
	"bytes"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pdfmerge/internal/capability"
	"github.com/MeKo-Tech/pdfmerge/internal/config"
)

// stubRenderer draws blank pages whose size follows the zoom and records
// released documents together with whether they still existed on disk.
type stubRenderer struct {
	pages    int
	err      error
	released []string
	existed  []bool
}

func (r *stubRenderer) Release(path string) error {
	_, err := os.Stat(path)
	r.released = append(r.released, path)
	r.existed = append(r.existed, err == nil)
	return nil
}

func (r *stubRenderer) PageCount(string) (int, error) { return r.pages, r.err }

func (r *stubRenderer) Render(_ string, _ int, zoom int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 6*zoom, 8*zoom)), nil
}

func newTestServer(t *testing.T, renderer *stubRenderer) *Server {
	t.Helper()

	app := config.DefaultConfig()
	app.Convert.TempDir = t.TempDir()
	app.Convert.Text.FontCandidates = nil
	app.Server.MaxUploadMB = 5

	if renderer == nil {
		renderer = &stubRenderer{pages: 1}
	}
	s, err := NewServer(Config{
		App:      app,
		Caps:     capability.Set{PDFEngine: capability.EnginePrimary, Imaging: true, TextGeneration: true},
		Version:  "test",
		Renderer: renderer,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type upload struct {
	field string
	path  string
}

// multipartRequest builds a POST carrying the given files and form values.
func multipartRequest(t *testing.T, target string, files []upload, values map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		require.NoError(t, err)
		part, err := mw.CreateFormFile(f.field, filepath.Base(f.path))
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
