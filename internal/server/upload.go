package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var errNoFiles = errors.New("no files provided")

// uploadDir creates a private working directory for one request.
func (s *Server) uploadDir() (string, error) {
	return os.MkdirTemp(s.app.Convert.TempDir, "pdfmerge-upload-*")
}

// parseForm limits the body and parses a multipart form, writing the error
// response itself. It reports whether the handler should continue.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return false
	}
	return true
}

// saveUploads writes every file under field into dir, each in its own
// numbered subdirectory so equal names do not collide and the original base
// name is kept. Paths are returned in upload order.
func saveUploads(r *http.Request, field, dir string) ([]string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, errNoFiles
	}

	headers := r.MultipartForm.File[field]
	paths := make([]string, 0, len(headers))
	for i, h := range headers {
		p, err := saveUpload(h, filepath.Join(dir, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		uploadSizeBytes.Observe(float64(h.Size))
		paths = append(paths, p)
	}
	return paths, nil
}

func saveUpload(h *multipart.FileHeader, dir string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + h.Filename))
	if name == "/" || name == "." {
		name = "upload"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}

	src, err := h.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", name, err)
	}
	defer func() { _ = src.Close() }()

	dst := filepath.Join(dir, name)
	return dst, writeFile(dst, src)
}

// saveBytes stores an in-memory upload under dir/<index>/<name>.
func saveBytes(dir string, index int, name string, data []byte) (string, error) {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		name = "upload"
	}
	sub := filepath.Join(dir, strconv.Itoa(index))
	if err := os.MkdirAll(sub, 0o750); err != nil {
		return "", err
	}
	dst := filepath.Join(sub, name)
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return "", err
	}
	uploadSizeBytes.Observe(float64(len(data)))
	return dst, nil
}

func writeFile(dst string, src io.Reader) error {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
