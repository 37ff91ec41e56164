package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/tutorit/ai"
	"github.com/poiesic/tutorit/core"
	"github.com/poiesic/tutorit/session"
)

// PromptMode selects the prompt assembly strategy once, at construction.
type PromptMode int

const (
	// ModeDedicated uses domain-specific prompt assembly and structural
	// post-validation of the generated content.
	ModeDedicated PromptMode = iota
	// ModeFallback issues a single raw generation call with a fixed
	// system/user prompt pair. Used when the dedicated pipeline is
	// unavailable.
	ModeFallback
)

// iepStrategy is one of the two fixed prompt implementations.
// Which one a pipeline uses is decided at construction, never by
// inspecting values at call time.
type iepStrategy interface {
	messages(doc *core.Document) []ai.Message
	checkContent(content string) error
}

type dedicatedIEP struct{}

func (dedicatedIEP) messages(doc *core.Document) []ai.Message {
	return []ai.Message{
		ai.SystemMessage(iepSystemPrompt),
		ai.UserMessage(buildDedicatedIEPPrompt(doc)),
	}
}

// checkContent verifies the structural shape the dedicated prompt asked for.
func (dedicatedIEP) checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: response lacks content", core.ErrGeneration)
	}
	lower := strings.ToLower(content)
	for _, section := range []string{"goal", "accommodation"} {
		if !strings.Contains(lower, section) {
			return fmt.Errorf("%w: response is missing the %s section", core.ErrGeneration, section)
		}
	}
	return nil
}

type fallbackIEP struct{}

func (fallbackIEP) messages(doc *core.Document) []ai.Message {
	return []ai.Message{
		ai.SystemMessage(iepFallbackSystemPrompt),
		ai.UserMessage(buildFallbackIEPPrompt(doc)),
	}
}

func (fallbackIEP) checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: response lacks content", core.ErrGeneration)
	}
	return nil
}

// IEPPipeline generates IEP artifacts from registered documents.
type IEPPipeline struct {
	store       *session.Store
	generator   ai.Generator
	strategy    iepStrategy
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// IEPOption configures an IEPPipeline.
type IEPOption func(*IEPPipeline) error

// WithIEPTemperature sets the generation sampling temperature.
func WithIEPTemperature(temperature float64) IEPOption {
	return func(p *IEPPipeline) error {
		p.temperature = temperature
		return nil
	}
}

// WithIEPLogger sets a custom logger.
func WithIEPLogger(logger *slog.Logger) IEPOption {
	return func(p *IEPPipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewIEPPipeline creates an IEP generation pipeline using the given
// prompt mode.
func NewIEPPipeline(store *session.Store, generator ai.Generator, mode PromptMode, opts ...IEPOption) (*IEPPipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	var strategy iepStrategy
	switch mode {
	case ModeDedicated:
		strategy = dedicatedIEP{}
	case ModeFallback:
		strategy = fallbackIEP{}
	default:
		return nil, fmt.Errorf("unknown prompt mode %d", mode)
	}

	p := &IEPPipeline{
		store:       store,
		generator:   generator,
		strategy:    strategy,
		temperature: 0.7,
		maxTokens:   4000,
		logger:      slog.Default().With("component", "iep-pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Generate produces an IEP artifact from the given document and stores
// it in the session registry. On failure or cancellation nothing is
// persisted.
func (p *IEPPipeline) Generate(ctx context.Context, doc *core.Document) (*core.Artifact, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	content, err := p.generator.ChatCompletion(ctx, p.strategy.messages(doc),
		ai.WithTemperature(p.temperature),
		ai.WithMaxTokens(p.maxTokens),
	)
	if err != nil {
		return nil, classifyGenerationError(err)
	}
	if err := p.strategy.checkContent(content); err != nil {
		p.logger.Error("generated IEP failed content check", "document", doc.Metadata.Source, "err", err)
		return nil, err
	}
	// A cancelled operation behaves as if it never started.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifact := &core.Artifact{
		ID:               core.NewID(),
		Kind:             core.KindIEP,
		Content:          content,
		Timestamp:        time.Now().UTC(),
		SourceDocumentID: doc.ID,
		SourceName:       doc.Metadata.Source,
	}

	if err := p.store.AppendArtifact(artifact); err != nil {
		return nil, err
	}

	p.logger.Info("generated IEP", "id", artifact.ID, "document", doc.Metadata.Source)
	return artifact, nil
}
