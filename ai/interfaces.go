package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use and deterministic for
// identical text and model configuration.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text completions from ordered chat messages.
// Implementations must be thread-safe for concurrent use and must honor
// context cancellation and deadlines on every call.
type Generator interface {
	// ChatCompletion sends the messages to the model and returns the
	// generated content. A deadline on ctx bounds the call; expiry is
	// reported as core.ErrGenerationTimeout by callers that classify it.
	ChatCompletion(ctx context.Context, messages []Message, opts ...CallOption) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Generator instances, ensuring they share configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
