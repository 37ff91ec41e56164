package artifact

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
	"github.com/poiesic/tutorit/session"
)

func weeklyParams(iepID string) *core.LessonPlanParams {
	return &core.LessonPlanParams{
		Subject:        "Reading",
		GradeLevel:     "3rd Grade",
		Timeframe:      core.TimeframeWeekly,
		Duration:       "45 minutes per session",
		Days:           []string{"Monday", "Wednesday", "Friday"},
		Goals:          []string{"Improve reading fluency"},
		Materials:      []string{"Leveled readers"},
		Accommodations: []string{"Extended time"},
		SourceIEPID:    iepID,
	}
}

func registeredIEP(t *testing.T, store *session.Store) *core.Artifact {
	t.Helper()
	iep := &core.Artifact{
		ID:        core.NewID(),
		Kind:      core.KindIEP,
		Content:   "Annual Goals: improve reading fluency. Accommodations: extended time.",
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, store.AppendArtifact(iep))
	return iep
}

func setupLessonPlanPipeline(t *testing.T, mode PromptMode) (*LessonPlanPipeline, *session.Store, *mock.MockGenerator) {
	store := session.NewStore()
	generator := mock.NewMockGenerator()

	pipeline, err := NewLessonPlanPipeline(store, generator, mode)
	require.NoError(t, err)

	return pipeline, store, generator
}

func TestNewLessonPlanPipeline(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := NewLessonPlanPipeline(nil, mock.NewMockGenerator(), ModeDedicated)
		assert.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("nil generator", func(t *testing.T) {
		_, err := NewLessonPlanPipeline(session.NewStore(), nil, ModeDedicated)
		assert.ErrorIs(t, err, ErrGeneratorRequired)
	})
}

func TestLessonPlanPipeline_Generate(t *testing.T) {
	pipeline, store, generator := setupLessonPlanPipeline(t, ModeDedicated)
	iep := registeredIEP(t, store)
	params := weeklyParams(iep.ID)

	plan, err := pipeline.Generate(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, core.KindLessonPlan, plan.Kind)
	assert.Equal(t, iep.ID, plan.SourceIEPID)
	assert.Equal(t, params, plan.Params)
	assert.NotEmpty(t, plan.Content)
	assert.False(t, plan.Timestamp.IsZero())

	require.Len(t, store.LessonPlans(), 1)
	assert.Equal(t, plan.ID, store.LessonPlans()[0].ID)

	t.Run("prompt integrates IEP and parameters", func(t *testing.T) {
		messages := generator.LastMessages()
		require.Len(t, messages, 2)
		prompt := messages[1].Content
		assert.Contains(t, prompt, iep.Content)
		assert.Contains(t, prompt, "Reading")
		assert.Contains(t, prompt, "3rd Grade")
		assert.Contains(t, prompt, "Monday, Wednesday, Friday")
		assert.Contains(t, prompt, "Improve reading fluency")
		assert.Contains(t, prompt, "Leveled readers")
		assert.Contains(t, prompt, "Extended time")
	})
}

func TestLessonPlanPipeline_GenerateDaily(t *testing.T) {
	pipeline, store, generator := setupLessonPlanPipeline(t, ModeDedicated)
	iep := registeredIEP(t, store)

	params := weeklyParams(iep.ID)
	params.Timeframe = core.TimeframeDaily
	params.Days = []string{"Daily"}

	_, err := pipeline.Generate(context.Background(), params)
	require.NoError(t, err)

	prompt := generator.LastMessages()[1].Content
	assert.Contains(t, prompt, "daily lesson plan")
	assert.Contains(t, prompt, "Schedule: Daily")
}

func TestLessonPlanPipeline_GenerateInvalidParams(t *testing.T) {
	pipeline, store, generator := setupLessonPlanPipeline(t, ModeDedicated)
	registeredIEP(t, store)

	params := weeklyParams("whatever")
	params.Goals = nil

	_, err := pipeline.Generate(context.Background(), params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Equal(t, 0, generator.CallCount())
	assert.Empty(t, store.LessonPlans())
}

func TestLessonPlanPipeline_DanglingIEPReference(t *testing.T) {
	pipeline, store, generator := setupLessonPlanPipeline(t, ModeDedicated)

	t.Run("missing IEP", func(t *testing.T) {
		_, err := pipeline.Generate(context.Background(), weeklyParams("no-such-iep"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrValidation))
		assert.Contains(t, err.Error(), "no-such-iep")
		assert.Equal(t, 0, generator.CallCount())
		assert.Empty(t, store.LessonPlans())
	})

	t.Run("reference to a lesson plan is not an IEP", func(t *testing.T) {
		other := &core.Artifact{
			ID:        core.NewID(),
			Kind:      core.KindLessonPlan,
			Content:   "some plan",
			Timestamp: time.Now().UTC(),
		}
		require.NoError(t, store.AppendArtifact(other))

		_, err := pipeline.Generate(context.Background(), weeklyParams(other.ID))
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrValidation))
	})

	t.Run("IEP removed by a document clear", func(t *testing.T) {
		iep := registeredIEP(t, store)
		store.ClearDocuments()

		_, err := pipeline.Generate(context.Background(), weeklyParams(iep.ID))
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrValidation))
		assert.Empty(t, store.LessonPlans())
	})
}

func TestLessonPlanPipeline_GenerateFailuresPersistNothing(t *testing.T) {
	pipeline, store, generator := setupLessonPlanPipeline(t, ModeDedicated)
	iep := registeredIEP(t, store)

	generator.ChatCompletionFunc = func(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (string, error) {
		return "", errors.New("model unavailable")
	}

	_, err := pipeline.Generate(context.Background(), weeklyParams(iep.ID))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrGeneration))
	assert.Empty(t, store.LessonPlans())
}

func TestBuildLessonPlanPrompt_Deterministic(t *testing.T) {
	params := weeklyParams("iep-1")
	first := buildLessonPlanPrompt(params, "iep content")
	second := buildLessonPlanPrompt(params, "iep content")
	assert.Equal(t, first, second)

	t.Run("blank list entries skipped", func(t *testing.T) {
		params := weeklyParams("iep-1")
		params.Materials = []string{"", "  ", "Leveled readers"}
		prompt := buildLessonPlanPrompt(params, "iep content")
		assert.Equal(t, 1, strings.Count(prompt, "- Leveled readers\n"))
		assert.NotContains(t, prompt, "-  \n")
	})
}
