package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pdfmerge/internal/capability"
	"github.com/MeKo-Tech/pdfmerge/internal/testutil"
)

// writeScript installs an executable shell script named name in a temp dir.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script converters are not supported on Windows")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700)) //nolint:gosec // G306: test script must be executable
	return path
}

func wordCaps(command string) capability.Set {
	caps := fullCaps()
	caps.WordConversion = true
	caps.WordCommand = command
	return caps
}

func TestWordArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"--headless", "--convert-to", "pdf", "--outdir", "/out", "/in/a.docx"},
		wordArgs("/usr/bin/soffice", "/in/a.docx", "/out", "/out/a.pdf"))
	assert.Equal(t,
		[]string{"-f", "pdf", "-o", "/out/a.pdf", "/in/a.docx"},
		wordArgs("/usr/bin/unoconv", "/in/a.docx", "/out", "/out/a.pdf"))
}

func TestConvertWord(t *testing.T) {
	fixture := testutil.CreatePDFPages(t, filepath.Join(t.TempDir(), "fixture.pdf"), 2, 200)
	src := testutil.CreateTextFile(t, filepath.Join(t.TempDir(), "report.docx"), "fake docx")

	t.Run("libreoffice style", func(t *testing.T) {
		// $5 is the --outdir value, $6 the source document
		script := writeScript(t, "soffice", fmt.Sprintf(`stem=$(basename "$6"); cp %q "$5/${stem%%.*}.pdf"`, fixture))
		c, tempDir := newTestConverter(t, wordCaps(script))

		got, err := c.ConvertToPDF(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "pdf_merger_temp_report_0.pdf"), got)
		assert.Equal(t, 2, pageCount(t, got))
	})

	t.Run("unoconv style", func(t *testing.T) {
		script := writeScript(t, "unoconv", fmt.Sprintf(`cp %q "$4"`, fixture))
		c, _ := newTestConverter(t, wordCaps(script))

		got, err := c.ConvertToPDF(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, 2, pageCount(t, got))
	})

	t.Run("converter exits with error", func(t *testing.T) {
		script := writeScript(t, "soffice", `echo "source file could not be loaded" >&2; exit 1`)
		c, tempDir := newTestConverter(t, wordCaps(script))

		_, err := c.ConvertToPDF(context.Background(), src)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not be loaded")
		assert.Empty(t, testutil.TempArtifacts(t, tempDir))
	})

	t.Run("converter produces nothing", func(t *testing.T) {
		script := writeScript(t, "soffice", `exit 0`)
		c, _ := newTestConverter(t, wordCaps(script))

		_, err := c.ConvertToPDF(context.Background(), src)
		assert.True(t, errors.Is(err, ErrNotProduced))
	})

	t.Run("no converter installed", func(t *testing.T) {
		c, _ := newTestConverter(t, fullCaps())

		_, err := c.ConvertToPDF(context.Background(), src)
		var mde *capability.MissingDependencyError
		assert.ErrorAs(t, err, &mde)
	})
}
