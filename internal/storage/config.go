package storage

import (
	"context"
	"fmt"
	"time"

	"community-platform-backend/internal/config"
)

// New creates the backend selected by cfg.Type
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg.BaseURL, cfg.UploadDir)
	case "s3":
		return NewS3Storage(ctx, S3Options{
			Bucket:   cfg.Bucket,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// PresignExpiration returns how long download links stay valid
func PresignExpiration(cfg config.StorageConfig) time.Duration {
	if cfg.PresignMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(cfg.PresignMinutes) * time.Minute
}
