package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tutorit/core"
)

func sampleDocument() *core.Document {
	return &core.Document{
		ID:      "doc-1",
		Content: "Student reads at grade 2 level.\nStruggles with phonemic awareness.",
		Metadata: core.DocumentMetadata{
			Source:       "evaluation.txt",
			DocumentType: "text",
			UploadTime:   time.Date(2025, 3, 14, 9, 26, 53, 589000, time.UTC),
			Size:         66,
			Extra:        map[string]string{"origin": "upload", "teacher": "Nguyen"},
		},
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		doc := sampleDocument()
		decoded, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)
		assert.Equal(t, doc, decoded)
	})

	t.Run("empty extra map", func(t *testing.T) {
		doc := sampleDocument()
		doc.Metadata.Extra = nil
		decoded, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)
		assert.Equal(t, doc.ID, decoded.ID)
		assert.Empty(t, decoded.Metadata.Extra)
	})

	t.Run("unicode content", func(t *testing.T) {
		doc := sampleDocument()
		doc.Content = "évaluation niveau 2 élève 学生"
		decoded, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)
		assert.Equal(t, doc.Content, decoded.Content)
	})
}

func TestDocumentEncodingDeterministic(t *testing.T) {
	// Map iteration order must not leak into the encoding.
	doc := sampleDocument()
	first := MarshalDocument(doc)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, MarshalDocument(doc))
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	t.Run("IEP artifact", func(t *testing.T) {
		iep := &core.Artifact{
			ID:               "art-1",
			Kind:             core.KindIEP,
			Content:          "Annual Goals: improve reading fluency.",
			Timestamp:        time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
			SourceDocumentID: "doc-1",
			SourceName:       "evaluation.txt",
		}
		decoded, err := UnmarshalArtifact(MarshalArtifact(iep))
		require.NoError(t, err)
		assert.Equal(t, iep, decoded)
		assert.Nil(t, decoded.Params)
	})

	t.Run("lesson plan with params", func(t *testing.T) {
		plan := &core.Artifact{
			ID:          "art-2",
			Kind:        core.KindLessonPlan,
			Content:     "Week plan...",
			Timestamp:   time.Date(2025, 3, 15, 8, 30, 0, 0, time.UTC),
			SourceIEPID: "art-1",
			Params: &core.LessonPlanParams{
				Subject:        "Reading",
				GradeLevel:     "3rd Grade",
				Timeframe:      core.TimeframeWeekly,
				Duration:       "45 minutes per session",
				Days:           []string{"Monday", "Wednesday", "Friday"},
				Goals:          []string{"Improve reading fluency"},
				Materials:      []string{"Leveled readers"},
				Accommodations: []string{"Extended time"},
				SourceIEPID:    "art-1",
			},
		}
		decoded, err := UnmarshalArtifact(MarshalArtifact(plan))
		require.NoError(t, err)
		assert.Equal(t, plan, decoded)
	})
}

func TestUnmarshalTruncatedData(t *testing.T) {
	encoded := MarshalDocument(sampleDocument())

	_, err := UnmarshalDocument(encoded[:len(encoded)/2])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalArtifact([]byte{})
	assert.Error(t, err)
}
