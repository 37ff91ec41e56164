package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tutorit/ai/mock"
	"github.com/poiesic/tutorit/core"
)

func testDoc(id, content string) *core.Document {
	return &core.Document{
		ID:      id,
		Content: content,
		Metadata: core.DocumentMetadata{
			Source: id + ".txt",
		},
	}
}

// directionalEmbedder returns fixed vectors per text so similarity
// ordering is under test control.
func directionalEmbedder(vectors map[string][]float32, query []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return query, nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			v, ok := vectors[text]
			if !ok {
				return nil, fmt.Errorf("unexpected text %q", text)
			}
			out[i] = v
		}
		return out, nil
	}
	return embedder
}

func TestNewIndex(t *testing.T) {
	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewIndex(nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("overlap must be smaller than chunk size", func(t *testing.T) {
		_, err := NewIndex(mock.NewMockEmbedder(), WithChunkSize(100), WithChunkOverlap(100))
		assert.Error(t, err)
	})

	t.Run("invalid chunk size", func(t *testing.T) {
		_, err := NewIndex(mock.NewMockEmbedder(), WithChunkSize(0))
		assert.Error(t, err)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := NewIndex(mock.NewMockEmbedder(), WithChunkOverlap(-1))
		assert.Error(t, err)
	})
}

func TestIndex_AddAndCounts(t *testing.T) {
	idx, err := NewIndex(mock.NewMockEmbedder())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, testDoc("d1", "short document"), testDoc("d2", "another short document")))

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 2, idx.DocumentCount())
	assert.Equal(t, 1, idx.ChunkCount("d1"))
	assert.Equal(t, 0, idx.ChunkCount("missing"))
}

func TestIndex_AddValidatesDocuments(t *testing.T) {
	idx, err := NewIndex(mock.NewMockEmbedder())
	require.NoError(t, err)

	err = idx.Add(context.Background(), testDoc("d1", "   "))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_AddEmbeddingFailureLeavesIndexUntouched(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx, err := NewIndex(embedder)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, testDoc("d1", "first document")))
	require.Equal(t, 1, idx.Len())

	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	err = idx.Add(ctx, testDoc("d2", "second document"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrIndex))

	// The failed batch must not leave partial entries behind.
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 0, idx.ChunkCount("d2"))
}

func TestIndex_AddDetectsEmbeddingCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}
	idx, err := NewIndex(embedder)
	require.NoError(t, err)

	err = idx.Add(context.Background(), testDoc("d1", "one"), testDoc("d2", "two"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrIndex))
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_QueryOrderingAndBounds(t *testing.T) {
	vectors := map[string][]float32{
		"about dogs":    {1, 0, 0},
		"about cats":    {0, 1, 0},
		"about weather": {0, 0, 1},
	}
	embedder := directionalEmbedder(vectors, []float32{0.9, 0.4, 0.1})

	idx, err := NewIndex(embedder)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx,
		testDoc("d1", "about dogs"),
		testDoc("d2", "about cats"),
		testDoc("d3", "about weather"),
	))

	t.Run("descending similarity order", func(t *testing.T) {
		results, err := idx.Query(ctx, "tell me about dogs", 3)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, "d1", results[0].DocumentID)
		assert.Equal(t, "d2", results[1].DocumentID)
		assert.Equal(t, "d3", results[2].DocumentID)
		assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
		assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
	})

	t.Run("k bounds the result list", func(t *testing.T) {
		results, err := idx.Query(ctx, "query", 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("k larger than index", func(t *testing.T) {
		results, err := idx.Query(ctx, "query", 50)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("non-positive k", func(t *testing.T) {
		_, err := idx.Query(ctx, "query", 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrIndex))
	})

	t.Run("result carries attribution", func(t *testing.T) {
		results, err := idx.Query(ctx, "query", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "d1.txt", results[0].Source)
		assert.Equal(t, "about dogs", results[0].Text)
		assert.Equal(t, core.ChunkIDFromContent("about dogs"), results[0].ChunkID)
	})
}

func TestIndex_QueryEmptyIndex(t *testing.T) {
	idx, err := NewIndex(mock.NewMockEmbedder())
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "anything", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_ChunkOffsetsPointIntoContent(t *testing.T) {
	content := strings.Join([]string{
		"Alpha paragraph describing the first topic in detail.",
		"Beta paragraph describing the second topic in detail.",
		"Gamma paragraph describing the third topic in detail.",
	}, "\n\n")

	idx, err := NewIndex(mock.NewMockEmbedder(), WithChunkSize(60), WithChunkOverlap(0))
	require.NoError(t, err)
	ctx := context.Background()

	doc := testDoc("d1", content)
	require.NoError(t, idx.Add(ctx, doc))
	require.Greater(t, idx.ChunkCount("d1"), 1)

	results, err := idx.Query(ctx, "topic", idx.Len())
	require.NoError(t, err)

	for _, chunk := range results {
		require.LessOrEqual(t, chunk.Offset+len(chunk.Text), len(content))
		assert.Equal(t, chunk.Text, content[chunk.Offset:chunk.Offset+len(chunk.Text)])
	}
}

func TestIndex_Remove(t *testing.T) {
	idx, err := NewIndex(mock.NewMockEmbedder())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, testDoc("d1", "first"), testDoc("d2", "second")))

	assert.Equal(t, 1, idx.Remove("d1"))
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 0, idx.ChunkCount("d1"))

	t.Run("unknown document is a no-op", func(t *testing.T) {
		assert.Equal(t, 0, idx.Remove("missing"))
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("removed document no longer retrievable", func(t *testing.T) {
		results, err := idx.Query(ctx, "first", 10)
		require.NoError(t, err)
		for _, chunk := range results {
			assert.NotEqual(t, "d1", chunk.DocumentID)
		}
	})
}

func TestIndex_ClearIsIdempotent(t *testing.T) {
	idx, err := NewIndex(mock.NewMockEmbedder())
	require.NoError(t, err)

	require.NoError(t, idx.Add(context.Background(), testDoc("d1", "content")))
	require.Equal(t, 1, idx.Len())

	idx.Clear()
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.DocumentCount())

	// Clearing again must not panic or change anything.
	idx.Clear()
	assert.Equal(t, 0, idx.Len())
}

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})
}
