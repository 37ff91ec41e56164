package storage

import (
	"context"

	"github.com/poiesic/tutorit/core"
)

// Archive persists a session's documents and generated artifacts beyond
// process lifetime. The vector index is not archived; it is rebuilt from
// the restored documents.
//
// Implementations must be thread-safe and support concurrent access.
type Archive interface {
	// SaveDocuments writes documents to the archive, overwriting entries
	// with the same id.
	SaveDocuments(ctx context.Context, docs ...*core.Document) error

	// SaveArtifacts writes artifacts to the archive, overwriting entries
	// with the same id.
	SaveArtifacts(ctx context.Context, artifacts ...*core.Artifact) error

	// Documents returns every archived document.
	Documents(ctx context.Context) ([]*core.Document, error)

	// Artifacts returns every archived artifact.
	Artifacts(ctx context.Context) ([]*core.Artifact, error)

	// Clear removes everything from the archive.
	Clear(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}
