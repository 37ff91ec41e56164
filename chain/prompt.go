package chain

import (
	"fmt"
	"strings"

	"github.com/poiesic/tutorit/core"
)

// systemPrompt frames every retrieval-augmented answer.
const systemPrompt = `You are an educational assistant that answers questions about uploaded documents.
Ground every answer in the provided context. If the context does not contain
the information needed, say so instead of guessing.`

// noContextMarker is embedded in the prompt when retrieval finds nothing,
// so the model is told explicitly that no grounding exists rather than
// being handed an empty section it could misread.
const noContextMarker = "No context available. No documents have been indexed for this session."

// buildPrompt assembles the user prompt from the retrieved chunks and the
// query. Assembly is deterministic: identical inputs produce byte-identical
// prompt text.
func buildPrompt(query string, chunks []core.RetrievedChunk) string {
	var sb strings.Builder

	sb.WriteString("Context:\n\n")
	if len(chunks) == 0 {
		sb.WriteString(noContextMarker)
		sb.WriteString("\n")
	} else {
		for i, chunk := range chunks {
			fmt.Fprintf(&sb, "[%d] (source: %s)\n", i+1, chunk.Source)
			sb.WriteString(chunk.Text)
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)
	return sb.String()
}
