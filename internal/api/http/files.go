package http

import (
	"bufio"
	"io"
	"net/http"

	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/service"
	"community-platform-backend/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen covers the signatures mimetype looks at
const sniffLen = 3072

// FileHandler streams files of the local storage backend
type FileHandler struct {
	files storage.FileReader
}

func NewFileHandler(files storage.FileReader) *FileHandler {
	return &FileHandler{files: files}
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := varsOf(r)["key"]
	if key == "" {
		writeError(w, r, service.NewValidationError("key", "is required"))
		return
	}

	file, err := h.files.ReadFile(key)
	if err != nil {
		newProblem(http.StatusNotFound, "not-found", "file not found").WriteJSON(w)
		return
	}
	defer file.Close()

	br := bufio.NewReaderSize(file, sniffLen)
	head, _ := br.Peek(sniffLen)

	w.Header().Set("Content-Type", mimetype.Detect(head).String())
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, br); err != nil {
		logger.WarnContext(r.Context(), "file download interrupted", "key", key, "error", err)
	}
}
