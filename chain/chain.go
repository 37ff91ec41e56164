package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/tutorit/ai"
	"github.com/poiesic/tutorit/core"
	"github.com/poiesic/tutorit/index"
)

const (
	defaultTopK        = 4
	defaultTemperature = 0.3
	defaultMaxTokens   = 2000
)

// Result is the outcome of one retrieval-augmented query.
// Sources preserves retrieval order.
type Result struct {
	Answer  string
	Sources []core.RetrievedChunk
}

// Chain composes a query, retrieved context, and a generation call into
// an answer with citations.
//
// The chain itself is side-effect-free beyond the generation call:
// recording execution time and persisting the query record belong to the
// caller.
type Chain struct {
	idx         *index.Index
	generator   ai.Generator
	topK        int
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// Option configures a Chain.
type Option func(*Chain) error

// WithTopK sets how many chunks are retrieved per query.
// Default is 4.
func WithTopK(k int) Option {
	return func(c *Chain) error {
		if k < 1 {
			return fmt.Errorf("top-k must be positive, got %d", k)
		}
		c.topK = k
		return nil
	}
}

// WithTemperature sets the generation sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(c *Chain) error {
		c.temperature = temperature
		return nil
	}
}

// WithMaxTokens sets the generation response limit.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Chain) error {
		c.maxTokens = maxTokens
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChain creates a retrieval chain over the given index and generator.
func NewChain(idx *index.Index, generator ai.Generator, opts ...Option) (*Chain, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	c := &Chain{
		idx:         idx,
		generator:   generator,
		topK:        defaultTopK,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		logger:      slog.Default().With("component", "chain"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Run retrieves context for the query and generates a grounded answer.
//
// Empty or whitespace-only queries are a validation failure. When the
// index is empty, generation still runs but the prompt carries an
// explicit no-context marker, so the chain never fabricates grounding.
// A deadline on ctx bounds the generation call; expiry surfaces as
// core.ErrGenerationTimeout.
func (c *Chain) Run(ctx context.Context, query string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", core.ErrValidation)
	}

	chunks, err := c.idx.Query(ctx, query, c.topK)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(query, chunks)
	messages := []ai.Message{
		ai.SystemMessage(systemPrompt),
		ai.UserMessage(prompt),
	}

	c.logger.Debug("running retrieval chain", "chunks", len(chunks), "promptLength", len(prompt))

	answer, err := c.generator.ChatCompletion(ctx, messages,
		ai.WithTemperature(c.temperature),
		ai.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", core.ErrGenerationTimeout, err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrGeneration, err)
	}

	return &Result{Answer: answer, Sources: chunks}, nil
}
