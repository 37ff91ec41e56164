package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/tutorit/core"
)

// Loader extracts page content from a persisted upload. Byte-level
// parsing of rich formats (PDF, DOCX, spreadsheets) is an external
// collaborator; implementations of this interface plug it in.
type Loader interface {
	// LoadDocument reads the file at path and returns its text content.
	LoadDocument(path string) (string, error)
}

// PlainTextLoader handles the text-like formats on the allow-list
// (text, markdown, CSV, JSON) by reading the file verbatim. It rejects
// binary formats that need a dedicated extractor.
type PlainTextLoader struct{}

// NewPlainTextLoader creates the default loader.
func NewPlainTextLoader() *PlainTextLoader {
	return &PlainTextLoader{}
}

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".json": true,
}

// LoadDocument reads a text-like file and returns its content.
func (l *PlainTextLoader) LoadDocument(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !textExtensions[ext] {
		return "", fmt.Errorf("%w: no extractor registered for %q", core.ErrIngestion, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %q: %v", core.ErrIngestion, filepath.Base(path), err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %q is not valid UTF-8 text", core.ErrIngestion, filepath.Base(path))
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: %q contains no text", core.ErrIngestion, filepath.Base(path))
	}
	return content, nil
}
