package ingestion

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/poiesic/tutorit/core"
)

// allowedExtensions maps accepted upload extensions to a logical
// document type recorded in the document metadata.
var allowedExtensions = map[string]string{
	".txt":  "text",
	".md":   "markdown",
	".pdf":  "pdf",
	".docx": "document",
	".doc":  "document",
	".csv":  "spreadsheet",
	".xlsx": "spreadsheet",
	".json": "data",
}

// DocumentTypeForName returns the logical document type for a filename,
// or false if the extension is not on the allow-list.
func DocumentTypeForName(name string) (string, bool) {
	docType, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	return docType, ok
}

// FileHandler persists uploaded bytes to scoped temporary storage for the
// duration of one ingestion batch. Cleanup releases everything it created,
// regardless of individual outcomes. Safe for concurrent use within a batch.
type FileHandler struct {
	tempDir string
	seq     atomic.Uint64
	logger  *slog.Logger
}

// NewFileHandler creates a file handler with its own temporary directory.
func NewFileHandler() (*FileHandler, error) {
	dir, err := os.MkdirTemp("", "tutorit-upload-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp storage: %v", core.ErrIngestion, err)
	}
	return &FileHandler{
		tempDir: dir,
		logger:  slog.Default().With("component", "file-handler"),
	}, nil
}

// ProcessUploadedFile validates the filename against the extension
// allow-list and writes the raw bytes to temporary storage.
// Returns the temp path of the persisted file.
func (h *FileHandler) ProcessUploadedFile(name string, data []byte) (string, error) {
	if _, ok := DocumentTypeForName(name); !ok {
		return "", fmt.Errorf("%w: unsupported file type %q", core.ErrIngestion, filepath.Ext(name))
	}

	// Flatten the name so uploads cannot escape the temp dir; the sequence
	// prefix keeps same-named uploads within one batch from colliding.
	path := filepath.Join(h.tempDir, fmt.Sprintf("%d_%s", h.seq.Add(1), filepath.Base(name)))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("%w: persisting %q: %v", core.ErrIngestion, name, err)
	}
	return path, nil
}

// Cleanup removes the temporary directory and everything in it.
// Safe to call multiple times.
func (h *FileHandler) Cleanup() {
	if h.tempDir == "" {
		return
	}
	if err := os.RemoveAll(h.tempDir); err != nil {
		h.logger.Warn("failed to remove temp storage", "dir", h.tempDir, "err", err)
		return
	}
	h.tempDir = ""
}
