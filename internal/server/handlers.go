package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MeKo-Tech/pdfmerge/internal/convert"
	"github.com/MeKo-Tech/pdfmerge/internal/pdf"
	"github.com/MeKo-Tech/pdfmerge/internal/preview"
	"github.com/MeKo-Tech/pdfmerge/internal/session"
	"github.com/MeKo-Tech/pdfmerge/internal/worker"
)

const mergedName = "merged.pdf"

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Busy:    s.runner != nil && s.runner.Busy(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// capabilitiesHandler reports which conversions and engines are available.
func (s *Server) capabilitiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, CapabilitiesResponse{
		Capabilities: s.caps,
		Missing:      s.caps.Missing(),
		Extensions:   convert.SupportedExtensions,
		Filters:      convert.FileFilter(),
	})
}

// infoHandler reports page count, size and validity of an uploaded PDF.
func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.parseForm(w, r) {
		return
	}

	dir, err := s.uploadDir()
	if err != nil {
		s.writeErrorResponse(w, "Failed to create working directory", http.StatusInternalServerError)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	paths, err := saveUploads(r, "file", dir)
	if err != nil {
		s.writeErrorResponse(w, "No file provided", http.StatusBadRequest)
		return
	}

	path := paths[0]
	fi := pdf.NewInfo(s.engines).FileInfo(path)
	fi.Path = ""
	check := pdf.NewValidator(s.engines).Check(path)

	s.writeJSON(w, http.StatusOK, InfoResponse{File: fi, Valid: check.Valid, Message: check.Message})
}

// mergeHandler converts, validates and merges the uploaded files in order
// and responds with the merged PDF.
func (s *Server) mergeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.runner.Busy() {
		s.writeErrorResponse(w, worker.ErrBusy.Error(), http.StatusConflict)
		return
	}
	if !s.parseForm(w, r) {
		return
	}

	dir, err := s.uploadDir()
	if err != nil {
		s.writeErrorResponse(w, "Failed to create working directory", http.StatusInternalServerError)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	paths, err := saveUploads(r, "files", dir)
	if err != nil {
		s.writeErrorResponse(w, "No files provided", http.StatusBadRequest)
		return
	}

	sess, _ := s.newSession(dir)
	defer func() { _ = sess.Close() }()

	report := sess.Add(r.Context(), paths)
	if sess.Len() < 2 {
		mergeRequestsTotal.WithLabelValues("http", "rejected").Inc()
		s.writeJSON(w, http.StatusBadRequest, addReportError(report))
		return
	}

	out := filepath.Join(dir, mergedName)
	events, err := sess.Merge(r.Context(), out)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, worker.ErrBusy) {
			status = http.StatusConflict
		}
		mergeRequestsTotal.WithLabelValues("http", "rejected").Inc()
		s.writeErrorResponse(w, err.Error(), status)
		return
	}

	ev := worker.Await(events)
	if ev.Type != worker.EventFinished {
		mergeRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeErrorResponse(w, ev.Message, http.StatusInternalServerError)
		return
	}
	mergeRequestsTotal.WithLabelValues("http", "success").Inc()

	w.Header().Set("X-Merge-Job", ev.JobID)
	w.Header().Set("X-Merge-Pages", strconv.Itoa(ev.Pages))
	s.writePDF(w, out)
}

// previewHandler renders one page of an uploaded file as PNG. Non-PDF files
// are converted first.
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.parseForm(w, r) {
		return
	}

	page, err := intField(r, "page", 1)
	if err != nil || page < 1 {
		s.writeErrorResponse(w, "Invalid page number", http.StatusBadRequest)
		return
	}
	zoom, err := intField(r, "zoom", s.app.Preview.DefaultZoom)
	if err != nil {
		s.writeErrorResponse(w, "Invalid zoom", http.StatusBadRequest)
		return
	}
	thumb, err := intField(r, "thumb", 0)
	if err != nil || thumb < 0 {
		s.writeErrorResponse(w, "Invalid thumbnail size", http.StatusBadRequest)
		return
	}

	dir, err := s.uploadDir()
	if err != nil {
		s.writeErrorResponse(w, "Failed to create working directory", http.StatusInternalServerError)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	paths, err := saveUploads(r, "file", dir)
	if err != nil {
		s.writeErrorResponse(w, "No file provided", http.StatusBadRequest)
		return
	}

	_, conv := s.newSession(dir)
	defer conv.CleanupTempFiles()

	doc, err := conv.ConvertToPDF(r.Context(), paths[0])
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Runs before the upload directory and temp artifacts are removed.
	defer func() {
		if err := preview.Release(s.renderer, doc); err != nil {
			s.log().Warn("failed to release preview document", "path", doc, "error", err)
		}
	}()

	viewer, err := preview.NewViewer(s.renderer, []string{doc}, s.app.Preview.ZoomLevels, s.app.Preview.DefaultZoom)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := viewer.Err(); err != nil {
		previewRendersTotal.WithLabelValues("error").Inc()
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := viewer.SetZoom(zoom); err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := viewer.SetPage(page - 1); err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, err := viewer.Thumbnail(thumb)
	if err != nil {
		previewRendersTotal.WithLabelValues("error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Rendering failed: %v", err), http.StatusInternalServerError)
		return
	}
	previewRendersTotal.WithLabelValues("success").Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Page-Count", strconv.Itoa(viewer.PageCount()))
	if err := png.Encode(w, img); err != nil {
		s.log().Error("failed to encode preview", "error", err)
	}
}

func intField(r *http.Request, name string, def int) (int, error) {
	v := r.FormValue(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// writePDF streams the file at path as an attachment.
func (s *Server) writePDF(w http.ResponseWriter, path string) {
	f, err := os.Open(path)
	if err != nil {
		s.writeErrorResponse(w, "Merged file is missing", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", mergedName))
	if st, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(st.Size(), 10))
	}
	if _, err := io.Copy(w, f); err != nil {
		s.log().Error("failed to write merged PDF", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log().Error("failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

// addReportError is the JSON body for requests whose files were all rejected.
func addReportError(report session.AddReport) ErrorResponse {
	return ErrorResponse{Error: pdf.ErrTooFewFiles.Error(), Report: &report}
}
