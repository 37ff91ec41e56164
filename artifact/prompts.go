package artifact

import (
	"fmt"
	"strings"

	"github.com/poiesic/tutorit/core"
)

// Prompt assembly is pure and deterministic: identical inputs always
// produce byte-identical prompt text, independent of the downstream
// generation call.

const iepSystemPrompt = `You are an AI assistant that specializes in creating Individualized Education Programs (IEPs) for students with special needs.`

const iepFallbackSystemPrompt = iepSystemPrompt

const lessonPlanSystemPrompt = `You are an AI assistant specialized in creating educational lesson plans that accommodate students with special needs.`

// buildDedicatedIEPPrompt asks for a fully structured IEP with named
// sections, so the result can be checked for shape.
func buildDedicatedIEPPrompt(doc *core.Document) string {
	var sb strings.Builder

	sb.WriteString("Based on the following student document, create a comprehensive IEP.\n\n")
	sb.WriteString("Structure the IEP with exactly these sections:\n")
	sb.WriteString("1. Present Levels of Performance\n")
	sb.WriteString("2. Annual Goals\n")
	sb.WriteString("3. Accommodations and Modifications\n")
	sb.WriteString("4. Services\n\n")
	fmt.Fprintf(&sb, "Document (%s):\n", doc.Metadata.Source)
	sb.WriteString(doc.Content)
	return sb.String()
}

// buildFallbackIEPPrompt is the fixed single-call prompt used when the
// dedicated pipeline is unavailable.
func buildFallbackIEPPrompt(doc *core.Document) string {
	return "Based on the following document, create a comprehensive IEP with appropriate goals, accommodations, and services. Document content: " + doc.Content
}

// buildLessonPlanPrompt assembles the lesson plan request from the
// structured parameters and the integrated IEP content.
func buildLessonPlanPrompt(params *core.LessonPlanParams, iepContent string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Create a detailed %s lesson plan for %s for %s students.\n\n",
		strings.ToLower(string(params.Timeframe)), params.Subject, params.GradeLevel)

	sb.WriteString("The plan should be based on the following IEP:\n")
	sb.WriteString(iepContent)
	sb.WriteString("\n\n")

	sb.WriteString("Class details:\n")
	fmt.Fprintf(&sb, "- Subject: %s\n", params.Subject)
	fmt.Fprintf(&sb, "- Grade Level: %s\n", params.GradeLevel)
	fmt.Fprintf(&sb, "- Duration: %s\n", params.Duration)
	if params.Timeframe == core.TimeframeWeekly {
		fmt.Fprintf(&sb, "- Schedule: %s\n", strings.Join(params.Days, ", "))
	} else {
		sb.WriteString("- Schedule: Daily\n")
	}

	sb.WriteString("\nLearning Goals:\n")
	writeList(&sb, params.Goals)

	sb.WriteString("\nMaterials Needed:\n")
	writeList(&sb, params.Materials)

	sb.WriteString("\nAdditional Accommodations:\n")
	writeList(&sb, params.Accommodations)

	sb.WriteString("\nPlease create a comprehensive lesson plan with:\n")
	sb.WriteString("1. Learning objectives\n")
	sb.WriteString("2. Detailed schedule/timeline\n")
	sb.WriteString("3. Teaching strategies with specific IEP accommodations\n")
	sb.WriteString("4. Assessment methods\n")
	sb.WriteString("5. Resources and materials organization\n\n")
	sb.WriteString("Format the plan clearly with sections and bullet points where appropriate.\n")

	return sb.String()
}

func writeList(sb *strings.Builder, items []string) {
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		fmt.Fprintf(sb, "- %s\n", item)
	}
}
