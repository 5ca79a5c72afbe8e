// Package session holds the ordered list of files to merge together with the
// temporary artifacts produced for them, and drives merges through a worker.
// A Session is owned by a single caller; merge notifications arrive on a
// channel and may be consumed from any goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/MeKo-Tech/pdfmerge/internal/convert"
	"github.com/MeKo-Tech/pdfmerge/internal/pdf"
	"github.com/MeKo-Tech/pdfmerge/internal/worker"
)

// ErrIndex is returned for list positions outside the current list.
var ErrIndex = errors.New("no such list entry")

// Options wires a session to its collaborators. Passwords may be nil.
type Options struct {
	Converter *convert.Converter
	Validator *pdf.Validator
	Passwords *pdf.PasswordHandler
	Runner    *worker.Runner
	Logger    *slog.Logger
}

// Session is the headless merge controller.
type Session struct {
	conv      *convert.Converter
	validator *pdf.Validator
	passwords *pdf.PasswordHandler
	runner    *worker.Runner
	logger    *slog.Logger

	mu        sync.Mutex
	entries   []Entry
	artifacts map[string]string
	decrypted []string
}

// New creates an empty session.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		conv:      opts.Converter,
		validator: opts.Validator,
		passwords: opts.Passwords,
		runner:    opts.Runner,
		logger:    logger,
		artifacts: make(map[string]string),
	}
}

// Add appends paths in order. Files already in the list are skipped,
// unsupported or unusable files are rejected with a reason, and everything
// else is converted and validated before it becomes visible.
func (s *Session) Add(ctx context.Context, paths []string) AddReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report AddReport
	for _, p := range paths {
		if s.indexOf(p) >= 0 {
			report.Skipped = append(report.Skipped, p)
			continue
		}
		if !convert.IsSupported(p) {
			report.Rejected = append(report.Rejected, Rejection{
				Path:   p,
				Reason: fmt.Sprintf("%s: %q", convert.ErrUnsupportedFormat, convert.Ext(p)),
			})
			continue
		}

		resolved, err := s.resolve(ctx, p)
		if err != nil {
			report.Rejected = append(report.Rejected, Rejection{Path: p, Reason: err.Error()})
			continue
		}

		if resolved != p {
			report.Converted++
			s.artifacts[p] = resolved
		}
		e := Entry{Path: p, Ext: convert.Ext(p)}
		s.entries = append(s.entries, e)
		report.Added = append(report.Added, e)
	}

	s.logger.Info("files added", "added", len(report.Added), "converted", report.Converted,
		"skipped", len(report.Skipped), "rejected", len(report.Rejected))
	return report
}

// resolve converts p if needed, decrypts it when it is protected and
// credentials are configured, and validates the result. Artifacts created
// for a file that fails are deleted before returning.
func (s *Session) resolve(ctx context.Context, p string) (string, error) {
	artifact, err := s.conv.ConvertToPDF(ctx, p)
	if err != nil {
		return "", err
	}

	verr := s.validator.IsValidPDF(artifact)
	if verr == nil {
		return artifact, nil
	}

	if s.passwords != nil && pdf.IsPasswordError(verr) {
		plain, err := s.passwords.Decrypt(artifact)
		if err == nil {
			if verr = s.validator.IsValidPDF(plain); verr == nil {
				if plain != artifact {
					s.decrypted = append(s.decrypted, plain)
				}
				return plain, nil
			}
			if plain != artifact {
				_ = s.passwords.CleanupTempFile(plain)
			}
		} else {
			verr = err
		}
	}

	if artifact != p {
		s.conv.Discard(artifact)
	}
	return "", verr
}

func (s *Session) indexOf(path string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.Path == path })
}

// Entries returns a copy of the visible list.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Paths returns the visible list as paths.
func (s *Session) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Path
	}
	return out
}

// Len returns the number of entries.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Remove deletes the entry at index. Its artifact stays tracked until the
// next cleanup.
func (s *Session) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return fmt.Errorf("%w: %d", ErrIndex, index)
	}
	s.entries = slices.Delete(s.entries, index, index+1)
	return nil
}

// MoveUp swaps the entry at index with its predecessor. It reports whether
// anything moved; the first entry stays put.
func (s *Session) MoveUp(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index <= 0 || index >= len(s.entries) {
		return false
	}
	s.entries[index-1], s.entries[index] = s.entries[index], s.entries[index-1]
	return true
}

// MoveDown swaps the entry at index with its successor. The last entry stays put.
func (s *Session) MoveDown(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries)-1 {
		return false
	}
	s.entries[index], s.entries[index+1] = s.entries[index+1], s.entries[index]
	return true
}

// Clear empties the visible list.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Busy reports whether a merge is running.
func (s *Session) Busy() bool {
	return s.runner.Busy()
}

// Merge resolves every entry to a PDF in list order, validates the list and
// submits it to the worker. The returned channel carries the worker's events;
// all temporary artifacts are deleted before the terminal event is delivered.
func (s *Session) Merge(ctx context.Context, output string) (<-chan worker.Event, error) {
	if s.runner.Busy() {
		return nil, worker.ErrBusy
	}

	inputs, err := s.mergeInputs(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateFileList(inputs); err != nil {
		return nil, err
	}

	events, err := s.runner.Submit(worker.NewJob(inputs, output))
	if err != nil {
		return nil, err
	}

	out := make(chan worker.Event, 2)
	go func() {
		defer close(out)
		for ev := range events {
			if ev.Terminal() {
				s.Cleanup()
			}
			out <- ev
		}
	}()
	return out, nil
}

func (s *Session) mergeInputs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputs := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if art, ok := s.artifacts[e.Path]; ok {
			if _, err := os.Stat(art); err == nil {
				inputs = append(inputs, art)
				continue
			}
			delete(s.artifacts, e.Path)
		}

		if e.Ext == "pdf" && !s.needsDecrypt(e.Path) {
			inputs = append(inputs, e.Path)
			continue
		}

		resolved, err := s.resolve(ctx, e.Path)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", filepath.Base(e.Path), err)
		}
		if resolved != e.Path {
			s.artifacts[e.Path] = resolved
		}
		inputs = append(inputs, resolved)
	}
	return inputs, nil
}

// needsDecrypt reports whether a plain PDF entry has to go through resolve
// again because its decrypted copy was cleaned up.
func (s *Session) needsDecrypt(path string) bool {
	if s.passwords == nil || !s.passwords.HasCredentials() {
		return false
	}
	encrypted, err := s.passwords.IsEncrypted(path)
	return err == nil && encrypted
}

// Cleanup deletes every temporary artifact owned by the session. It is safe
// to call repeatedly.
func (s *Session) Cleanup() {
	s.conv.CleanupTempFiles()

	s.mu.Lock()
	decrypted := s.decrypted
	s.decrypted = nil
	clear(s.artifacts)
	s.mu.Unlock()

	for _, f := range decrypted {
		if err := s.passwords.CleanupTempFile(f); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove decrypted copy", "path", f, "error", err)
		}
	}
}

// Close releases the session's temporary artifacts.
func (s *Session) Close() error {
	s.Cleanup()
	return nil
}
