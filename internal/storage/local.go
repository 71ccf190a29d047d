package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"community-platform-backend/internal/logger"
)

// LocalStorage keeps files on the local filesystem and relies on the
// HTTP server to serve them below baseURL.
type LocalStorage struct {
	baseURL string // e.g. "http://localhost:8080/files"
	rootDir string
}

func NewLocalStorage(baseURL, rootDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		rootDir: rootDir,
	}, nil
}

// path resolves key below rootDir and rejects keys escaping it
func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.rootDir, filepath.FromSlash(clean)), nil
}

func (s *LocalStorage) SaveFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(fullPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	logger.Debug("Stored file", "key", key, "size", size, "content_type", contentType)
	return nil
}

// GeneratePresignedDownloadURL points at the public file route. Local files
// are not access controlled, the expiry is ignored.
func (s *LocalStorage) GeneratePresignedDownloadURL(ctx context.Context, key, filename string, expiresIn time.Duration) (string, error) {
	if _, err := s.path(key); err != nil {
		return "", err
	}
	u := s.PublicURL(key)
	if filename != "" {
		u += "?download=" + url.QueryEscape(filename)
	}
	return u, nil
}

func (s *LocalStorage) PublicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

func (s *LocalStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStorage) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ReadFile opens a stored file for the /files route
func (s *LocalStorage) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}
