package index

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/tutorit/ai"
	"github.com/poiesic/tutorit/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// entry is a single indexed chunk with its embedding and back-reference
// to the owning document.
type entry struct {
	chunkID    core.ChunkID
	documentID string
	source     string
	text       string
	offset     int
	vector     []float32 // unit-normalized
}

// Index is an in-memory vector index over document chunks.
//
// Writes (Add, Remove, Clear) are mutually exclusive with each other and
// with in-flight queries; concurrent queries proceed against a consistent
// snapshot under a shared read lock.
type Index struct {
	mu        sync.RWMutex
	embedder  ai.Embedder
	splitter  textsplitter.TextSplitter
	chunkSize int
	overlap   int
	entries   []entry
	docChunks map[string]int // documentID -> chunk count
	logger    *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithChunkSize sets the chunk size used when splitting document content.
// Default is 1000 characters.
func WithChunkSize(size int) Option {
	return func(idx *Index) error {
		if size < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}
		idx.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks.
// Default is 200 characters.
func WithChunkOverlap(overlap int) Option {
	return func(idx *Index) error {
		if overlap < 0 {
			return fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
		}
		idx.overlap = overlap
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger
		return nil
	}
}

// NewIndex creates a new empty vector index using the given embedder.
func NewIndex(embedder ai.Embedder, opts ...Option) (*Index, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	idx := &Index{
		embedder:  embedder,
		chunkSize: defaultChunkSize,
		overlap:   defaultChunkOverlap,
		docChunks: make(map[string]int),
		logger:    slog.Default().With("component", "index"),
	}

	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}

	if idx.overlap >= idx.chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", idx.overlap, idx.chunkSize)
	}

	idx.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(idx.chunkSize),
		textsplitter.WithChunkOverlap(idx.overlap),
	)

	return idx, nil
}

// Add splits each document into overlapping chunks, embeds every chunk,
// and inserts the resulting entries.
//
// The call is all-or-nothing for the batch: chunking and embedding happen
// before the index is touched, so an embedding failure leaves the index in
// its prior consistent state.
func (idx *Index) Add(ctx context.Context, docs ...*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	var pending []entry
	var texts []string

	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}

		chunks, err := idx.splitter.SplitText(doc.Content)
		if err != nil {
			return fmt.Errorf("%w: splitting %q: %v", core.ErrIndex, doc.Metadata.Source, err)
		}
		if len(chunks) == 0 {
			chunks = []string{doc.Content}
		}

		// The splitter returns chunks in document order; locate each one
		// to recover its offset within the original content.
		searchFrom := 0
		for _, text := range chunks {
			offset := strings.Index(doc.Content[searchFrom:], text)
			if offset >= 0 {
				offset += searchFrom
				searchFrom = offset + 1
			} else {
				offset = 0
			}

			pending = append(pending, entry{
				chunkID:    core.ChunkIDFromContent(text),
				documentID: doc.ID,
				source:     doc.Metadata.Source,
				text:       text,
				offset:     offset,
			})
			texts = append(texts, text)
		}
	}

	idx.logger.Debug("embedding chunk batch", "documents", len(docs), "chunks", len(texts))

	vectors, err := idx.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: embedding failed: %v", core.ErrIndex, err)
	}
	if len(vectors) != len(pending) {
		return fmt.Errorf("%w: embedding result mismatch, expected %d, received %d",
			core.ErrIndex, len(pending), len(vectors))
	}

	for i := range pending {
		pending[i].vector = NormalizeVector(vectors[i])
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries = append(idx.entries, pending...)
	for _, e := range pending {
		idx.docChunks[e.documentID]++
	}

	idx.logger.Info("indexed documents", "documents", len(docs), "chunks", len(pending), "total", len(idx.entries))
	return nil
}

// Query embeds the query text and returns up to k entries ranked by
// descending cosine similarity. An empty index yields an empty result
// list; this is not an error.
func (idx *Index) Query(ctx context.Context, text string, k int) ([]core.RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", core.ErrIndex, k)
	}
	if idx.Len() == 0 {
		return []core.RetrievedChunk{}, nil
	}

	queryVec, err := idx.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", core.ErrIndex, err)
	}
	queryVec = NormalizeVector(queryVec)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]core.RetrievedChunk, 0, len(idx.entries))
	for _, e := range idx.entries {
		if len(e.vector) != len(queryVec) {
			continue
		}
		// Cosine similarity reduces to a dot product for normalized vectors.
		score := dotProduct(queryVec, e.vector)
		results = append(results, core.RetrievedChunk{
			ChunkID:    e.chunkID,
			DocumentID: e.documentID,
			Source:     e.source,
			Text:       e.text,
			Offset:     e.offset,
			Score:      score,
		})
	}

	slices.SortStableFunc(results, func(a, b core.RetrievedChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Remove deletes all entries belonging to the given document.
// Returns the number of entries removed; removing an unknown document is
// a no-op.
func (idx *Index) Remove(documentID string) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	removed := idx.docChunks[documentID]
	if removed == 0 {
		return 0
	}

	kept := idx.entries[:0]
	for _, e := range idx.entries {
		if e.documentID != documentID {
			kept = append(kept, e)
		}
	}
	idx.entries = kept
	delete(idx.docChunks, documentID)

	idx.logger.Debug("removed document from index", "documentID", documentID, "chunks", removed)
	return removed
}

// Clear removes all entries. Clearing an already-empty index is a no-op.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries = nil
	idx.docChunks = make(map[string]int)
}

// Len returns the number of indexed chunk entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// DocumentCount returns the number of distinct documents in the index.
func (idx *Index) DocumentCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docChunks)
}

// ChunkCount returns the number of indexed chunks for one document.
func (idx *Index) ChunkCount(documentID string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docChunks[documentID]
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
