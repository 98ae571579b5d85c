package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ceritaku/server/config"
)

// MaxUploadBytes caps individual image uploads at 2MB.
const MaxUploadBytes = 2 * 1024 * 1024

var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

// ValidateImageUpload checks extension and size limits for an uploaded image.
func ValidateImageUpload(fh *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("file type %s is not allowed; accepted types are jpeg, png, jpg, gif", ext)
	}
	if fh.Size > MaxUploadBytes {
		return fmt.Errorf("file size exceeds 2MB")
	}
	return nil
}

// SaveUpload stores an uploaded file under <storage root>/<subdir> using a
// collision-resistant name. Client-supplied filenames are never trusted as
// storage paths; keep the original name as metadata instead. Returns the path
// relative to the storage root.
func SaveUpload(fh *multipart.FileHeader, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := uuid.NewString() + ext
	relPath := filepath.ToSlash(filepath.Join(subdir, name))

	dir := filepath.Join(config.Get().StorageRoot, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(config.Get().StorageRoot, subdir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// The size header is validated upfront; the limited reader enforces it
	// against lying clients.
	lr := &io.LimitedReader{R: src, N: MaxUploadBytes + 1}
	written, err := io.Copy(dst, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > MaxUploadBytes {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("file size exceeds 2MB")
	}

	return relPath, nil
}

// DeleteStored removes a stored file by its storage-relative path.
// Missing files are not an error; the row is authoritative.
func DeleteStored(relPath string) {
	if relPath == "" {
		return
	}
	full := filepath.Join(config.Get().StorageRoot, filepath.FromSlash(relPath))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		if Sugar != nil {
			Sugar.Warnf("failed to delete stored file %s: %v", relPath, err)
		}
	}
}

// StoredFileExists reports whether a storage-relative path has a backing file.
func StoredFileExists(relPath string) bool {
	if relPath == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(config.Get().StorageRoot, filepath.FromSlash(relPath)))
	return err == nil
}

// PublicURL builds the externally reachable URL for a stored file.
func PublicURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	base := strings.TrimRight(config.Get().AppBaseURL, "/")
	return base + "/static/" + strings.TrimLeft(filepath.ToSlash(relPath), "/")
}
