// Package files stores uploaded note attachments on local disk. Stored
// files get a generated, time-ordered name and are served back under the
// /uploads URL prefix.
package files

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/logger"
	"kharcha/internal/uuid"
)

// URLPrefix is the public path prefix under which stored files are served.
const URLPrefix = "/uploads/"

// allowedTypes mirrors the attachment types the client offers: images,
// PDF, and Word documents.
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// StoredFile describes a file persisted by the store.
type StoredFile struct {
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
}

// Store writes uploads to a directory and enforces size/type limits.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates a file store rooted at dir, creating it if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Save persists one multipart file under a generated name and returns its
// stored name and public URL.
func (s *Store) Save(fh *multipart.FileHeader) (*StoredFile, error) {
	if fh.Size > s.maxBytes {
		return nil, apperrors.ErrFileTooLarge
	}

	contentType := fh.Header.Get("Content-Type")
	if !allowedTypes[contentType] {
		return nil, apperrors.ErrFileType
	}

	name := uuid.New() + sanitizeExt(fh.Filename)

	src, err := fh.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &StoredFile{FileName: name, FileURL: URLPrefix + name}, nil
}

// Path resolves a stored file name to its on-disk path. Names containing
// path separators or traversal segments are rejected.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", apperrors.ErrUploadNotFound
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.ErrUploadNotFound
	}
	return path, nil
}

// Sweep deletes stored files older than maxAge and returns how many were
// removed.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			logger.Get().Warnf("failed to remove expired upload %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

// StartSweeper runs Sweep on every tick of interval until ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.Sweep(maxAge)
				if err != nil {
					logger.Get().Errorw("upload sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					logger.Get().Infow("upload sweep", "removed", removed)
				}
			}
		}
	}()
}

// sanitizeExt extracts a safe file extension from an original file name.
func sanitizeExt(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
