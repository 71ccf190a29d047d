package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrNotFound = errors.New("file not found")

// Storage defines the interface for file storage backends.
// Keys are slash separated paths such as "avatars/<uuid>.png".
type Storage interface {
	// SaveFile stores the content of reader under key
	SaveFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GeneratePresignedDownloadURL returns a time limited URL that downloads
	// the file as filename
	GeneratePresignedDownloadURL(ctx context.Context, key, filename string, expiresIn time.Duration) (string, error)

	// PublicURL returns the unsigned URL of a public file such as an image
	PublicURL(key string) string

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a file from storage. Missing files are not an error.
	DeleteFile(ctx context.Context, key string) error
}

// FileReader is implemented by backends whose files are served by this process
type FileReader interface {
	ReadFile(key string) (io.ReadCloser, error)
}
