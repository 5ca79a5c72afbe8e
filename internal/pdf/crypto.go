package pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PasswordCredentials contains the passwords for a PDF file.
type PasswordCredentials struct {
	UserPassword  string `json:"user_password,omitempty"`
	OwnerPassword string `json:"owner_password,omitempty"`
}

// Empty reports whether no password is set.
func (c *PasswordCredentials) Empty() bool {
	return c == nil || c.UserPassword == "" && c.OwnerPassword == ""
}

// PasswordHandler detects protected inputs and decrypts them into temp files.
type PasswordHandler struct {
	credentials *PasswordCredentials
	tempDir     string
	logger      *slog.Logger
}

// NewPasswordHandler creates a password handler. Decrypted copies are written to tempDir.
func NewPasswordHandler(creds *PasswordCredentials, tempDir string, logger *slog.Logger) *PasswordHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordHandler{credentials: creds, tempDir: tempDir, logger: logger}
}

// HasCredentials reports whether any password is configured.
func (h *PasswordHandler) HasCredentials() bool {
	return !h.credentials.Empty()
}

// IsEncrypted checks if a PDF file is encrypted/password-protected.
func (h *PasswordHandler) IsEncrypted(filename string) (bool, error) {
	if _, err := os.Stat(filename); err != nil {
		return false, fmt.Errorf("failed to check PDF encryption status: %w", err)
	}

	// Page counting fails for encrypted files opened without a password
	_, err := api.PageCountFile(filename)
	if err != nil {
		if IsPasswordError(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check PDF encryption status: %w", err)
	}

	return false, nil
}

// Decrypt returns filename unchanged when it is not encrypted. Otherwise it
// writes a decrypted copy using the configured credentials and returns its
// path; the caller owns the returned temp file.
func (h *PasswordHandler) Decrypt(filename string) (string, error) {
	encrypted, err := h.IsEncrypted(filename)
	if err != nil || !encrypted {
		return filename, err
	}
	if !h.HasCredentials() {
		return "", fmt.Errorf("%w: %s", ErrEncrypted, filename)
	}

	tempFile, err := os.CreateTemp(h.tempDir, "decrypted-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	_ = tempFile.Close()

	conf := model.NewDefaultConfiguration()
	conf.UserPW = h.credentials.UserPassword
	conf.OwnerPW = h.credentials.OwnerPassword

	if err := api.DecryptFile(filename, tempFileName, conf); err != nil {
		_ = os.Remove(tempFileName)
		return "", fmt.Errorf("failed to decrypt PDF: %w", err)
	}

	h.logger.Debug("decrypted protected PDF", "source", filename, "decrypted", tempFileName)
	return tempFileName, nil
}

// CleanupTempFile removes a temporary decrypted file.
func (h *PasswordHandler) CleanupTempFile(filename string) error {
	if filename == "" {
		return nil
	}

	// Only remove files that look like our temp files
	if strings.Contains(filename, "decrypted-") && strings.HasSuffix(filename, ".pdf") {
		return os.Remove(filename)
	}

	return nil
}

// IsPasswordError reports whether err means the document needs a password.
// Only pdfcpu's sentinels and the innermost library messages are consulted;
// wrapping messages carry file paths and are ignored.
func IsPasswordError(err error) bool {
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if errors.Is(err, ErrEncrypted) ||
		errors.Is(err, pdfcpu.ErrWrongPassword) ||
		errors.Is(err, pdfcpu.ErrUnknownEncryption) {
		return true
	}

	for _, msg := range leafMessages(err, nil) {
		msg = strings.ToLower(msg)
		for _, keyword := range []string{"password", "encrypt", "decrypt"} {
			if strings.Contains(msg, keyword) {
				return true
			}
		}
	}
	return false
}

// leafMessages collects the messages of errors that wrap nothing. A path
// error unwraps to its cause, so its path never reaches the result.
func leafMessages(err error, out []string) []string {
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			out = leafMessages(e, out)
		}
	case interface{ Unwrap() error }:
		if inner := u.Unwrap(); inner != nil {
			return leafMessages(inner, out)
		}
		out = append(out, err.Error())
	default:
		out = append(out, err.Error())
	}
	return out
}
