package service

import (
	"context"
	"errors"
	"fmt"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/storage"
)

// FileStore validates uploads and keeps storage and database in step
type FileStore struct {
	storage  storage.Storage
	images   *storage.ImageResolver
	maxBytes int64
}

func NewFileStore(s storage.Storage, images *storage.ImageResolver, maxUploadMB int64) *FileStore {
	return &FileStore{storage: s, images: images, maxBytes: maxUploadMB << 20}
}

var imagePrefixes = map[domain.ImageField]string{
	domain.ImageAvatar:     "avatars",
	domain.ImageLogo:       "logos",
	domain.ImageBackground: "backgrounds",
}

// save inspects and stores the file below prefix and returns its key
func (f *FileStore) save(ctx context.Context, prefix string, file FileInput, allowed []string) (string, *storage.Upload, error) {
	up, err := storage.Inspect(file.Body, file.Size, f.maxBytes, allowed)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrEmptyFile) {
			return "", nil, NewValidationError("file", err.Error())
		}
		return "", nil, err
	}
	key := storage.NewKey(prefix, up.Extension)
	if err := f.storage.SaveFile(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return "", nil, fmt.Errorf("failed to store file: %w", err)
	}
	return key, up, nil
}

// replaceImage stores file, persists the new key and removes the old file.
// The new file is removed again when persisting fails.
func (f *FileStore) replaceImage(ctx context.Context, field domain.ImageField, file FileInput, oldKey string, persist func(key string) error) error {
	key, _, err := f.save(ctx, imagePrefixes[field], file, storage.ImageTypes)
	if err != nil {
		return err
	}
	if err := persist(key); err != nil {
		f.remove(ctx, key)
		return err
	}
	f.remove(ctx, oldKey)
	return nil
}

// remove deletes a file and only logs failures
func (f *FileStore) remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := f.storage.DeleteFile(ctx, key); err != nil {
		logger.WarnContext(ctx, "Failed to delete stored file", "key", key, "error", err)
	}
}

func (f *FileStore) imageURL(field domain.ImageField, key string) string {
	if f == nil || f.images == nil {
		return ""
	}
	return f.images.URL(field, key)
}
