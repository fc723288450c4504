package narrative

import (
	"context"
	"fmt"
	"time"

	"formpulse/internal/domain"
	"formpulse/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

const llmCallTimeout = 30 * time.Second

// ollamaGenerator implements domain.NarrativeGenerator against a local
// Ollama server.
type ollamaGenerator struct {
	llmClient *ollama.LLM
}

// NewOllamaGenerator creates a new instance of ollamaGenerator.
func NewOllamaGenerator(llm *ollama.LLM) domain.NarrativeGenerator {
	return &ollamaGenerator{llmClient: llm}
}

// GenerateSummary implements domain.NarrativeGenerator
func (g *ollamaGenerator) GenerateSummary(ctx context.Context, questionnaireTitle string, prompt string) (string, error) {
	l := logger.Get()
	l.Info("Generating questionnaire summary with LLM",
		zap.String("questionnaire_title", questionnaireTitle),
		zap.Int("prompt_length", len(prompt)))

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	response, err := g.llmClient.Call(callCtx, prompt, llms.WithTemperature(0.2))
	if err != nil {
		if err == context.DeadlineExceeded {
			l.Error("LLM request timed out", zap.Error(err))
			return "", domain.NewLLMServiceError(fmt.Errorf("LLM request timed out: %w", err))
		}
		l.Error("Failed to get response from LLM", zap.Error(err))
		return "", domain.NewLLMServiceError(fmt.Errorf("LLM call failed: %w", err))
	}

	return response, nil
}
