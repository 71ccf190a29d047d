package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file is too large")
	ErrUnsupportedType = errors.New("file type is not supported")
	ErrEmptyFile       = errors.New("file is empty")
)

var (
	ImageTypes    = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	DocumentTypes = []string{"application/pdf"}
)

// Upload is a validated file ready to be stored
type Upload struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Extension   string
}

// Inspect sniffs the content type of r and checks it against allowed and
// maxBytes. The returned Upload replays the sniffed bytes.
func Inspect(r io.Reader, size, maxBytes int64, allowed []string) (*Upload, error) {
	if size == 0 {
		return nil, ErrEmptyFile
	}
	if maxBytes > 0 && size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, size, maxBytes)
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	contentType := strings.SplitN(mt.String(), ";", 2)[0]
	if !slices.Contains(allowed, contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	return &Upload{
		Body:        io.MultiReader(bytes.NewReader(head), r),
		Size:        size,
		ContentType: contentType,
		Extension:   mt.Extension(),
	}, nil
}

// NewKey returns a fresh key below prefix, e.g. "avatars/<uuid>.png"
func NewKey(prefix, extension string) string {
	return path.Join(prefix, uuid.NewString()+extension)
}
