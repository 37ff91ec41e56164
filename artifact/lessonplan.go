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

// lessonPlanStrategy mirrors iepStrategy for lesson plan generation.
type lessonPlanStrategy interface {
	messages(params *core.LessonPlanParams, iepContent string) []ai.Message
	checkContent(content string) error
}

type dedicatedLessonPlan struct{}

func (dedicatedLessonPlan) messages(params *core.LessonPlanParams, iepContent string) []ai.Message {
	return []ai.Message{
		ai.SystemMessage(lessonPlanSystemPrompt),
		ai.UserMessage(buildLessonPlanPrompt(params, iepContent)),
	}
}

func (dedicatedLessonPlan) checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: response lacks content", core.ErrGeneration)
	}
	return nil
}

type fallbackLessonPlan struct{}

func (fallbackLessonPlan) messages(params *core.LessonPlanParams, iepContent string) []ai.Message {
	// Single raw call: the IEP rides along unformatted.
	prompt := fmt.Sprintf("Create a %s lesson plan for %s (%s) based on this IEP:\n%s",
		strings.ToLower(string(params.Timeframe)), params.Subject, params.GradeLevel, iepContent)
	return []ai.Message{
		ai.SystemMessage(lessonPlanSystemPrompt),
		ai.UserMessage(prompt),
	}
}

func (fallbackLessonPlan) checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: response lacks content", core.ErrGeneration)
	}
	return nil
}

// LessonPlanPipeline generates lesson plan artifacts that integrate an
// existing IEP artifact.
type LessonPlanPipeline struct {
	store       *session.Store
	generator   ai.Generator
	strategy    lessonPlanStrategy
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// LessonPlanOption configures a LessonPlanPipeline.
type LessonPlanOption func(*LessonPlanPipeline) error

// WithLessonPlanTemperature sets the generation sampling temperature.
func WithLessonPlanTemperature(temperature float64) LessonPlanOption {
	return func(p *LessonPlanPipeline) error {
		p.temperature = temperature
		return nil
	}
}

// WithLessonPlanLogger sets a custom logger.
func WithLessonPlanLogger(logger *slog.Logger) LessonPlanOption {
	return func(p *LessonPlanPipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewLessonPlanPipeline creates a lesson plan generation pipeline using
// the given prompt mode.
func NewLessonPlanPipeline(store *session.Store, generator ai.Generator, mode PromptMode, opts ...LessonPlanOption) (*LessonPlanPipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	var strategy lessonPlanStrategy
	switch mode {
	case ModeDedicated:
		strategy = dedicatedLessonPlan{}
	case ModeFallback:
		strategy = fallbackLessonPlan{}
	default:
		return nil, fmt.Errorf("unknown prompt mode %d", mode)
	}

	p := &LessonPlanPipeline{
		store:       store,
		generator:   generator,
		strategy:    strategy,
		temperature: 0.7,
		maxTokens:   4000,
		logger:      slog.Default().With("component", "lesson-plan-pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Generate validates the parameters, resolves the referenced IEP in the
// current registry, and produces a lesson plan artifact. A dangling
// source IEP reference is a validation failure and creates no artifact.
func (p *LessonPlanPipeline) Generate(ctx context.Context, params *core.LessonPlanParams) (*core.Artifact, error) {
	if err := core.ValidateLessonPlanParams(params); err != nil {
		return nil, err
	}

	iep := p.store.ArtifactByID(params.SourceIEPID)
	if iep == nil || iep.Kind != core.KindIEP {
		return nil, fmt.Errorf("%w: IEP %q not found in registry", core.ErrValidation, params.SourceIEPID)
	}

	content, err := p.generator.ChatCompletion(ctx, p.strategy.messages(params, iep.Content),
		ai.WithTemperature(p.temperature),
		ai.WithMaxTokens(p.maxTokens),
	)
	if err != nil {
		return nil, classifyGenerationError(err)
	}
	if err := p.strategy.checkContent(content); err != nil {
		p.logger.Error("generated lesson plan failed content check", "subject", params.Subject, "err", err)
		return nil, err
	}
	// A cancelled operation behaves as if it never started.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifact := &core.Artifact{
		ID:          core.NewID(),
		Kind:        core.KindLessonPlan,
		Content:     content,
		Timestamp:   time.Now().UTC(),
		SourceIEPID: iep.ID,
		Params:      params,
	}

	if err := p.store.AppendArtifact(artifact); err != nil {
		return nil, err
	}

	p.logger.Info("generated lesson plan",
		"id", artifact.ID,
		"subject", params.Subject,
		"timeframe", params.Timeframe,
		"sourceIEP", iep.ID)
	return artifact, nil
}
