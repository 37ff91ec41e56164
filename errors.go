package tutorit

import "errors"

// ErrArchiveNotConfigured indicates Archive or Restore was called
// without an archive path or instance configured.
var ErrArchiveNotConfigured = errors.New("archive not configured")
