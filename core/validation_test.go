package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() *LessonPlanParams {
	return &LessonPlanParams{
		Subject:     "Reading",
		GradeLevel:  "3rd Grade",
		Timeframe:   TimeframeWeekly,
		Duration:    "45 minutes per session",
		Days:        []string{"Monday", "Wednesday"},
		Goals:       []string{"Improve reading fluency"},
		SourceIEPID: "iep-1",
	}
}

func TestValidateDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := &Document{ID: NewID(), Content: "some content"}
		assert.NoError(t, ValidateDocument(doc))
	})

	t.Run("nil document", func(t *testing.T) {
		err := ValidateDocument(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("empty id", func(t *testing.T) {
		err := ValidateDocument(&Document{Content: "content"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("whitespace-only content", func(t *testing.T) {
		err := ValidateDocument(&Document{ID: "d1", Content: "  \n\t "})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})
}

func TestValidateLessonPlanParams(t *testing.T) {
	t.Run("valid weekly params", func(t *testing.T) {
		assert.NoError(t, ValidateLessonPlanParams(validParams()))
	})

	t.Run("valid daily params", func(t *testing.T) {
		params := validParams()
		params.Timeframe = TimeframeDaily
		params.Days = []string{"Daily"}
		assert.NoError(t, ValidateLessonPlanParams(params))
	})

	t.Run("nil params", func(t *testing.T) {
		err := ValidateLessonPlanParams(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("missing required strings", func(t *testing.T) {
		testCases := []struct {
			name   string
			mutate func(*LessonPlanParams)
		}{
			{"empty subject", func(p *LessonPlanParams) { p.Subject = "" }},
			{"empty grade level", func(p *LessonPlanParams) { p.GradeLevel = " " }},
			{"empty duration", func(p *LessonPlanParams) { p.Duration = "" }},
			{"empty source IEP", func(p *LessonPlanParams) { p.SourceIEPID = "" }},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				params := validParams()
				tc.mutate(params)
				err := ValidateLessonPlanParams(params)
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
			})
		}
	})

	t.Run("daily plan with weekday schedule", func(t *testing.T) {
		params := validParams()
		params.Timeframe = TimeframeDaily
		params.Days = []string{"Monday"}
		err := ValidateLessonPlanParams(params)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("weekly plan with no days", func(t *testing.T) {
		params := validParams()
		params.Days = nil
		err := ValidateLessonPlanParams(params)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("weekly plan with invalid day", func(t *testing.T) {
		params := validParams()
		params.Days = []string{"Monday", "Funday"}
		err := ValidateLessonPlanParams(params)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("invalid timeframe", func(t *testing.T) {
		params := validParams()
		params.Timeframe = Timeframe("Monthly")
		err := ValidateLessonPlanParams(params)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("goals with only blank entries", func(t *testing.T) {
		params := validParams()
		params.Goals = []string{"", "  "}
		err := ValidateLessonPlanParams(params)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("empty materials and accommodations are fine", func(t *testing.T) {
		params := validParams()
		params.Materials = nil
		params.Accommodations = nil
		assert.NoError(t, ValidateLessonPlanParams(params))
	})
}

func TestChunkIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, ChunkIDFromContent("hello world"), ChunkIDFromContent("hello world"))
	})

	t.Run("different content differs", func(t *testing.T) {
		assert.NotEqual(t, ChunkIDFromContent("hello"), ChunkIDFromContent("world"))
	})
}

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestErrGenerationTimeout(t *testing.T) {
	// Timeouts are a specialization of generation failures.
	assert.True(t, errors.Is(ErrGenerationTimeout, ErrGeneration))
}
