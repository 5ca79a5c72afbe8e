package pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pdfmerge/internal/testutil"
)

func createEncryptedPDF(t *testing.T, dir, userPW, ownerPW string) string {
	t.Helper()

	plain := testutil.CreatePDFPages(t, filepath.Join(dir, "plain.pdf"), 2, 200)
	encrypted := filepath.Join(dir, "locked.pdf")
	conf := model.NewAESConfiguration(userPW, ownerPW, 256)
	require.NoError(t, api.EncryptFile(plain, encrypted, conf))
	return encrypted
}

func TestPasswordCredentialsEmpty(t *testing.T) {
	var nilCreds *PasswordCredentials
	assert.True(t, nilCreds.Empty())
	assert.True(t, (&PasswordCredentials{}).Empty())
	assert.False(t, (&PasswordCredentials{OwnerPassword: "o"}).Empty())
}

func TestPasswordHandler_IsEncrypted(t *testing.T) {
	dir := t.TempDir()
	handler := NewPasswordHandler(nil, dir, nil)

	t.Run("non-existent file", func(t *testing.T) {
		_, err := handler.IsEncrypted(filepath.Join(dir, "missing.pdf"))
		assert.Error(t, err)
	})

	t.Run("missing file under a password-like directory", func(t *testing.T) {
		encrypted, err := handler.IsEncrypted(filepath.Join(dir, "password-reset-docs", "missing.pdf"))
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.False(t, encrypted)
	})

	t.Run("corrupt file under an encrypted-like directory", func(t *testing.T) {
		path := testutil.CreateCorruptPDF(t, filepath.Join(dir, "encrypted-archive", "broken.pdf"))

		encrypted, err := handler.IsEncrypted(path)
		require.Error(t, err)
		assert.False(t, encrypted)
	})

	t.Run("plain PDF", func(t *testing.T) {
		path := testutil.CreatePDFPages(t, filepath.Join(dir, "open.pdf"), 1, 200)
		encrypted, err := handler.IsEncrypted(path)
		require.NoError(t, err)
		assert.False(t, encrypted)
	})

	t.Run("encrypted PDF", func(t *testing.T) {
		path := createEncryptedPDF(t, t.TempDir(), "user", "owner")
		encrypted, err := handler.IsEncrypted(path)
		require.NoError(t, err)
		assert.True(t, encrypted)
	})
}

func TestPasswordHandler_Decrypt(t *testing.T) {
	t.Run("plain file is returned unchanged", func(t *testing.T) {
		dir := t.TempDir()
		path := testutil.CreatePDFPages(t, filepath.Join(dir, "open.pdf"), 1, 200)

		out, err := NewPasswordHandler(nil, dir, nil).Decrypt(path)
		require.NoError(t, err)
		assert.Equal(t, path, out)
	})

	t.Run("encrypted without credentials", func(t *testing.T) {
		dir := t.TempDir()
		path := createEncryptedPDF(t, dir, "user", "owner")

		_, err := NewPasswordHandler(nil, dir, nil).Decrypt(path)
		assert.True(t, errors.Is(err, ErrEncrypted))
	})

	t.Run("encrypted with credentials", func(t *testing.T) {
		dir := t.TempDir()
		path := createEncryptedPDF(t, dir, "user", "owner")
		handler := NewPasswordHandler(&PasswordCredentials{UserPassword: "user", OwnerPassword: "owner"}, dir, nil)

		out, err := handler.Decrypt(path)
		require.NoError(t, err)
		assert.NotEqual(t, path, out)
		assert.Contains(t, filepath.Base(out), "decrypted-")

		n, err := NewPdfcpuEngine(true).PageCount(out)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, handler.CleanupTempFile(out))
		_, err = os.Stat(out)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("wrong credentials leave no temp file", func(t *testing.T) {
		dir := t.TempDir()
		path := createEncryptedPDF(t, dir, "user", "owner")
		tmp := t.TempDir()
		handler := NewPasswordHandler(&PasswordCredentials{UserPassword: "wrong"}, tmp, nil)

		_, err := handler.Decrypt(path)
		assert.Error(t, err)
		entries, _ := os.ReadDir(tmp)
		assert.Empty(t, entries)
	})
}

func TestPasswordHandler_CleanupTempFile(t *testing.T) {
	dir := t.TempDir()
	handler := NewPasswordHandler(nil, dir, nil)

	keep := testutil.CreateTextFile(t, filepath.Join(dir, "keep.pdf"), "x")
	require.NoError(t, handler.CleanupTempFile(keep))
	assert.True(t, testutil.FileExists(keep))

	assert.NoError(t, handler.CleanupTempFile(""))
}

func TestIsPasswordError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("please provide the correct password"), true},
		{errors.New("file is Encrypted"), true},
		{errors.New("unexpected EOF"), false},
		{fmt.Errorf("cannot read PDF: %w", pdfcpu.ErrWrongPassword), true},
		{errors.Join(fmt.Errorf("pdfcpu: %w", pdfcpu.ErrUnknownEncryption), errors.New("gofpdi: malformed")), true},
		{fmt.Errorf("%w: /tmp/a.pdf", ErrEncrypted), true},
		{&fs.PathError{Op: "open", Path: "/home/u/passwords/a.pdf", Err: syscall.ENOENT}, false},
		{fmt.Errorf("file /srv/decrypted/a.pdf: %w", errors.New("unexpected EOF")), false},
		{errors.Join(
			fmt.Errorf("pdfcpu: %w", errors.New("xref table corrupt")),
			fmt.Errorf("gofpdi: reading /tmp/encrypted-docs/a.pdf: %w", errors.New("malformed PDF")),
		), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPasswordError(tt.err))
	}
}
