package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotProduced is returned when the external converter exits cleanly without writing a PDF.
var ErrNotProduced = errors.New("could not create PDF file")

// wordArgs builds the converter command line. unoconv writes straight to
// output; LibreOffice writes <stem>.pdf into outDir.
func wordArgs(command, src, outDir, output string) []string {
	if strings.HasPrefix(filepath.Base(command), "unoconv") {
		return []string{"-f", "pdf", "-o", output, src}
	}
	return []string{"--headless", "--convert-to", "pdf", "--outdir", outDir, src}
}

func (c *Converter) convertWord(ctx context.Context, src, dst string) error {
	if err := c.caps.RequireWord(); err != nil {
		return err
	}

	timeout := time.Duration(c.cfg.Word.TimeoutSec) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outDir, err := os.MkdirTemp(c.tempDir, "pdf_merger_word_*")
	if err != nil {
		return fmt.Errorf("failed to create conversion directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	produced := filepath.Join(outDir, stem+".pdf")

	cmd := exec.CommandContext(ctx, c.caps.WordCommand, wordArgs(c.caps.WordCommand, src, outDir, produced)...) //nolint:gosec // G204: converter command comes from configuration
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("word conversion timed out after %s: %w", timeout, ctx.Err())
		}
		return fmt.Errorf("word conversion failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	if _, err := os.Stat(produced); err != nil {
		return ErrNotProduced
	}
	return moveFile(produced, dst)
}

// moveFile renames src to dst, copying when they live on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: caller-supplied input document
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) //nolint:gosec // G304: caller-supplied output path
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
