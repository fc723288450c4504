package domain

import "context"

// NarrativeGenerator produces an AI-written summary of questionnaire results.
// Implementations must ground the generated text on the facts they are given
// and must not invent numbers that are not present in the grounding payload.
type NarrativeGenerator interface {
	GenerateSummary(ctx context.Context, questionnaireTitle string, prompt string) (string, error)
}
