package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/pdfmerge/internal/capability"
	"github.com/MeKo-Tech/pdfmerge/internal/config"
	"github.com/MeKo-Tech/pdfmerge/internal/convert"
	"github.com/MeKo-Tech/pdfmerge/internal/pdf"
	"github.com/MeKo-Tech/pdfmerge/internal/preview"
	"github.com/MeKo-Tech/pdfmerge/internal/session"
	"github.com/MeKo-Tech/pdfmerge/internal/worker"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app         config.Config
	caps        capability.Set
	engines     *pdf.Strategy
	runner      *worker.Runner
	renderer    preview.Renderer
	rateLimiter *RateLimiter
	logger      *slog.Logger

	corsOrigin  string
	maxUploadMB int64
	version     string
}

// Config holds server configuration.
type Config struct {
	App     config.Config
	Caps    capability.Set
	Version string
	// Renderer defaults to MuPDF.
	Renderer preview.Renderer
	Logger   *slog.Logger
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Busy    bool   `json:"busy"`
	Time    string `json:"time"`
}

// CapabilitiesResponse is returned by GET /capabilities.
type CapabilitiesResponse struct {
	Capabilities capability.Set       `json:"capabilities"`
	Missing      []string             `json:"missing,omitempty"`
	Extensions   []string             `json:"extensions"`
	Filters      []convert.FilterGroup `json:"filters"`
}

// InfoResponse is returned by POST /info.
type InfoResponse struct {
	File    pdf.FileInfo `json:"file"`
	Valid   bool         `json:"valid"`
	Message string       `json:"message,omitempty"`
}

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Report  *session.AddReport `json:"report,omitempty"`
}

// NewServer creates a merge server. A single worker is shared by all
// requests, so at most one merge runs at a time.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engines := pdf.NewStrategy(cfg.Caps, cfg.App.Engine, logger)
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = preview.NewFitzRenderer()
	}

	s := &Server{
		app:         cfg.App,
		caps:        cfg.Caps,
		engines:     engines,
		runner:      worker.NewRunner(worker.NewMerger(engines, logger), logger),
		renderer:    renderer,
		logger:      logger,
		corsOrigin:  cfg.App.Server.CORSOrigin,
		maxUploadMB: int64(cfg.App.Server.MaxUploadMB),
		version:     cfg.Version,
	}

	if rl := cfg.App.Server.RateLimit; rl.Enabled {
		s.rateLimiter = NewRateLimiter(rl.RequestsPerMinute, rl.RequestsPerHour,
			rl.MaxRequestsPerDay, int64(rl.MaxDataPerDayMB)*1024*1024)
	}

	return s, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	if c, ok := s.renderer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/capabilities", s.corsMiddleware(s.capabilitiesHandler))
	mux.HandleFunc("/info", s.corsMiddleware(s.rateLimitMiddleware(s.infoHandler)))
	mux.HandleFunc("/merge", s.corsMiddleware(s.rateLimitMiddleware(s.mergeHandler)))
	mux.HandleFunc("/preview", s.corsMiddleware(s.rateLimitMiddleware(s.previewHandler)))
	mux.HandleFunc("/ws", s.rateLimitMiddleware(s.mergeWebSocketHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// newSession creates a request-scoped session whose artifacts live in dir.
func (s *Server) newSession(dir string) (*session.Session, *convert.Converter) {
	convCfg := s.app.Convert
	convCfg.TempDir = dir
	conv := convert.New(s.caps, convCfg, s.logger)

	creds := &pdf.PasswordCredentials{
		UserPassword:  s.app.PDF.UserPassword,
		OwnerPassword: s.app.PDF.OwnerPassword,
	}
	sess := session.New(session.Options{
		Converter: conv,
		Validator: pdf.NewValidator(s.engines),
		Passwords: pdf.NewPasswordHandler(creds, dir, s.logger),
		Runner:    s.runner,
		Logger:    s.logger,
	})
	return sess, conv
}

func (s *Server) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}
