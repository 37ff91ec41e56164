package chain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tutorit/ai"
	"github.com/poiesic/tutorit/ai/mock"
	"github.com/poiesic/tutorit/core"
	"github.com/poiesic/tutorit/index"
)

func setupTestChain(t *testing.T, opts ...Option) (*Chain, *index.Index, *mock.MockGenerator) {
	idx, err := index.NewIndex(mock.NewMockEmbedder())
	require.NoError(t, err)

	generator := mock.NewMockGenerator()
	c, err := NewChain(idx, generator, opts...)
	require.NoError(t, err)

	return c, idx, generator
}

func indexDocument(t *testing.T, idx *index.Index, id, content string) {
	t.Helper()
	err := idx.Add(context.Background(), &core.Document{
		ID:      id,
		Content: content,
		Metadata: core.DocumentMetadata{
			Source: id + ".txt",
		},
	})
	require.NoError(t, err)
}

func TestNewChain(t *testing.T) {
	t.Run("nil index", func(t *testing.T) {
		_, err := NewChain(nil, mock.NewMockGenerator())
		assert.ErrorIs(t, err, ErrIndexRequired)
	})

	t.Run("nil generator", func(t *testing.T) {
		idx, err := index.NewIndex(mock.NewMockEmbedder())
		require.NoError(t, err)
		_, err = NewChain(idx, nil)
		assert.ErrorIs(t, err, ErrGeneratorRequired)
	})

	t.Run("invalid top-k", func(t *testing.T) {
		idx, err := index.NewIndex(mock.NewMockEmbedder())
		require.NoError(t, err)
		_, err = NewChain(idx, mock.NewMockGenerator(), WithTopK(0))
		assert.Error(t, err)
	})
}

func TestChain_RunRejectsEmptyQuery(t *testing.T) {
	c, _, generator := setupTestChain(t)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := c.Run(context.Background(), query)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrValidation))
	}
	assert.Equal(t, 0, generator.CallCount())
}

func TestChain_RunWithContext(t *testing.T) {
	c, idx, generator := setupTestChain(t, WithTopK(2))
	indexDocument(t, idx, "d1", "The student receives speech therapy twice a week.")
	indexDocument(t, idx, "d2", "Math accommodations include extended test time.")

	result, err := c.Run(context.Background(), "What therapy does the student receive?")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Answer)
	assert.Len(t, result.Sources, 2)

	// The prompt carries the retrieved context and the question.
	messages := generator.LastMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, ai.RoleSystem, messages[0].Role)
	assert.Equal(t, ai.RoleUser, messages[1].Role)
	assert.Contains(t, messages[1].Content, "Context:")
	assert.Contains(t, messages[1].Content, "Question: What therapy does the student receive?")
	assert.Contains(t, messages[1].Content, "source: "+result.Sources[0].Source)
	assert.NotContains(t, messages[1].Content, noContextMarker)
}

func TestChain_RunEmptyIndexUsesNoContextMarker(t *testing.T) {
	c, _, generator := setupTestChain(t)

	result, err := c.Run(context.Background(), "Anything indexed?")
	require.NoError(t, err)

	assert.Empty(t, result.Sources)
	assert.NotEmpty(t, result.Answer)

	messages := generator.LastMessages()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1].Content, noContextMarker)
}

func TestChain_RunTopKBoundsSources(t *testing.T) {
	c, idx, _ := setupTestChain(t, WithTopK(1))
	indexDocument(t, idx, "d1", "first")
	indexDocument(t, idx, "d2", "second")
	indexDocument(t, idx, "d3", "third")

	result, err := c.Run(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, result.Sources, 1)
}

func TestChain_RunGenerationFailures(t *testing.T) {
	t.Run("generic failure maps to generation error", func(t *testing.T) {
		c, _, generator := setupTestChain(t)
		generator.ChatCompletionFunc = func(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (string, error) {
			return "", errors.New("model crashed")
		}

		_, err := c.Run(context.Background(), "query")
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrGeneration))
		assert.False(t, errors.Is(err, core.ErrGenerationTimeout))
	})

	t.Run("deadline surfaces as timeout", func(t *testing.T) {
		c, _, generator := setupTestChain(t)
		generator.ChatCompletionFunc = func(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (string, error) {
			return "", context.DeadlineExceeded
		}

		_, err := c.Run(context.Background(), "query")
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrGenerationTimeout))
		assert.True(t, errors.Is(err, core.ErrGeneration))
	})

	t.Run("expired context deadline", func(t *testing.T) {
		c, _, _ := setupTestChain(t)
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		_, err := c.Run(ctx, "query")
		require.Error(t, err)
	})

	t.Run("cancellation passes through", func(t *testing.T) {
		c, _, generator := setupTestChain(t)
		generator.ChatCompletionFunc = func(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (string, error) {
			return "", context.Canceled
		}

		_, err := c.Run(context.Background(), "query")
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, errors.Is(err, core.ErrGeneration))
	})
}

func TestBuildPrompt(t *testing.T) {
	chunks := []core.RetrievedChunk{
		{Source: "a.txt", Text: "alpha text"},
		{Source: "b.txt", Text: "beta text"},
	}

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, buildPrompt("q", chunks), buildPrompt("q", chunks))
	})

	t.Run("numbered citations in retrieval order", func(t *testing.T) {
		prompt := buildPrompt("q", chunks)
		first := strings.Index(prompt, "[1] (source: a.txt)")
		second := strings.Index(prompt, "[2] (source: b.txt)")
		require.GreaterOrEqual(t, first, 0)
		require.Greater(t, second, first)
	})

	t.Run("no chunks yields marker", func(t *testing.T) {
		prompt := buildPrompt("q", nil)
		assert.Contains(t, prompt, noContextMarker)
		assert.True(t, strings.HasSuffix(prompt, "Question: q"))
	})
}
