package capability

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pdfmerge/internal/config"
)

func stubLookPath(t *testing.T, found map[string]string) {
	t.Helper()
	orig := LookPath
	LookPath = func(name string) (string, error) {
		if p, ok := found[name]; ok {
			return p, nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { LookPath = orig })
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *config.Config)
		found       map[string]string
		wantEngine  PDFEngine
		wantWord    bool
		wantCommand string
	}{
		{
			name:       "defaults without office suite",
			mutate:     func(c *config.Config) {},
			wantEngine: EnginePrimary,
		},
		{
			name:        "libreoffice discovered",
			mutate:      func(c *config.Config) {},
			found:       map[string]string{"libreoffice": "/usr/bin/libreoffice"},
			wantEngine:  EnginePrimary,
			wantWord:    true,
			wantCommand: "/usr/bin/libreoffice",
		},
		{
			name:        "soffice preferred over unoconv",
			mutate:      func(c *config.Config) {},
			found:       map[string]string{"soffice": "/usr/bin/soffice", "unoconv": "/usr/bin/unoconv"},
			wantEngine:  EnginePrimary,
			wantWord:    true,
			wantCommand: "/usr/bin/soffice",
		},
		{
			name: "configured command only",
			mutate: func(c *config.Config) {
				c.Convert.Word.Command = "unoconv"
			},
			found:       map[string]string{"soffice": "/usr/bin/soffice", "unoconv": "/usr/bin/unoconv"},
			wantEngine:  EnginePrimary,
			wantWord:    true,
			wantCommand: "/usr/bin/unoconv",
		},
		{
			name: "word conversion disabled",
			mutate: func(c *config.Config) {
				c.Convert.Word.Enabled = false
			},
			found:      map[string]string{"soffice": "/usr/bin/soffice"},
			wantEngine: EnginePrimary,
		},
		{
			name: "gofpdi preferred",
			mutate: func(c *config.Config) {
				c.Engine.Preferred = config.EngineGofpdi
			},
			wantEngine: EngineFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookPath(t, tt.found)
			cfg := config.DefaultConfig()
			tt.mutate(&cfg)

			s := Detect(cfg)
			assert.Equal(t, tt.wantEngine, s.PDFEngine)
			assert.Equal(t, tt.wantWord, s.WordConversion)
			assert.Equal(t, tt.wantCommand, s.WordCommand)
			assert.True(t, s.Imaging)
			assert.True(t, s.TextGeneration)
		})
	}
}

func TestMissing(t *testing.T) {
	s := Set{PDFEngine: EngineNone}
	missing := s.Missing()
	require.Len(t, missing, 4)
	assert.Contains(t, missing[3], "LibreOffice")

	full := Set{PDFEngine: EnginePrimary, Imaging: true, TextGeneration: true, WordConversion: true}
	assert.Empty(t, full.Missing())
}

func TestRequireWord(t *testing.T) {
	err := Set{}.RequireWord()
	var mde *MissingDependencyError
	require.True(t, errors.As(err, &mde))
	assert.Equal(t, "Word conversion", mde.Component)
}
