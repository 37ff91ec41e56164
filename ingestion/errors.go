package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a session store is not provided.
	ErrStoreRequired = errors.New("session store required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrLoaderRequired is returned when a document loader is not provided.
	ErrLoaderRequired = errors.New("document loader required")

	// ErrInvalidMaxAttempts is returned for a non-positive retry budget.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
