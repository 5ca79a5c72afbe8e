package cmd

import (
	"log/slog"

	"github.com/MeKo-Tech/pdfmerge/internal/capability"
	"github.com/MeKo-Tech/pdfmerge/internal/config"
	"github.com/MeKo-Tech/pdfmerge/internal/convert"
	"github.com/MeKo-Tech/pdfmerge/internal/pdf"
	"github.com/MeKo-Tech/pdfmerge/internal/session"
	"github.com/MeKo-Tech/pdfmerge/internal/worker"
)

// app bundles the collaborators every command builds from the configuration.
type app struct {
	cfg     *config.Config
	caps    capability.Set
	engines *pdf.Strategy
	logger  *slog.Logger
}

func newApp() *app {
	cfg := GetConfig()
	caps := capability.Detect(*cfg)
	logger := slog.Default()
	return &app{
		cfg:     cfg,
		caps:    caps,
		engines: pdf.NewStrategy(caps, cfg.Engine, logger),
		logger:  logger,
	}
}

func (a *app) converter() *convert.Converter {
	return convert.New(a.caps, a.cfg.Convert, a.logger)
}

func (a *app) validator() *pdf.Validator { return pdf.NewValidator(a.engines) }

func (a *app) info() *pdf.Info { return pdf.NewInfo(a.engines) }

func (a *app) passwords(tempDir string) *pdf.PasswordHandler {
	creds := &pdf.PasswordCredentials{
		UserPassword:  a.cfg.PDF.UserPassword,
		OwnerPassword: a.cfg.PDF.OwnerPassword,
	}
	return pdf.NewPasswordHandler(creds, tempDir, a.logger)
}

func (a *app) session() *session.Session {
	conv := a.converter()
	return session.New(session.Options{
		Converter: conv,
		Validator: a.validator(),
		Passwords: a.passwords(conv.TempDir()),
		Runner:    worker.NewRunner(worker.NewMerger(a.engines, a.logger), a.logger),
		Logger:    a.logger,
	})
}
