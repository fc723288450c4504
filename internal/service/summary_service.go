package service

import (
	"context"
	"encoding/json"
	"errors"

	"formpulse/internal/adapter/narrative"
	"formpulse/internal/cache"
	"formpulse/internal/config"
	"formpulse/internal/domain"
	"formpulse/internal/dto"
	"formpulse/internal/logger"

	"go.uber.org/zap"
)

// SummaryService produces the AI-written narrative summary for a
// questionnaire, grounded on the same payload the dashboard shows.
type SummaryService interface {
	GetSummary(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*dto.SummaryResponse, error)
}

// summaryService implements SummaryService
type summaryService struct {
	analytics AnalyticsService
	generator domain.NarrativeGenerator
	cache     domain.Cache
	cfg       *config.Config
}

// NewSummaryService creates a new instance of summaryService
func NewSummaryService(analytics AnalyticsService, generator domain.NarrativeGenerator, cache domain.Cache, cfg *config.Config) SummaryService {
	return &summaryService{
		analytics: analytics,
		generator: generator,
		cache:     cache,
		cfg:       cfg,
	}
}

// GetSummary implements SummaryService
func (s *summaryService) GetSummary(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*dto.SummaryResponse, error) {
	if s.generator == nil {
		return nil, domain.NewLLMServiceError(errors.New("narrative generator is not configured"))
	}

	// Summaries are expensive; the plain (unfiltered) summary is cached per
	// questionnaire.
	cacheKey := cache.GenerateCacheKey("analytics", "summary", questionnaireID, tenantID)
	cacheable := s.cache != nil && isCacheableQuery(query)
	if cacheable {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var resp dto.SummaryResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				logger.Get().Debug("Summary cache hit", zap.String("questionnaireID", questionnaireID))
				return &resp, nil
			}
			logger.Get().Warn("Failed to unmarshal cached summary, regenerating", zap.String("cacheKey", cacheKey))
		} else if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Error("Failed to read summary from cache", zap.Error(err), zap.String("cacheKey", cacheKey))
		}
	}

	payload, title, err := s.analytics.GroundingForPrompt(ctx, tenantID, questionnaireID, query)
	if err != nil {
		return nil, err
	}
	if !payload.Available {
		return nil, domain.NewInvalidInputError("no response data available to summarize")
	}

	prompt := narrative.BuildSummaryPrompt(title, *payload)
	text, err := s.generator.GenerateSummary(ctx, title, prompt)
	if err != nil {
		logger.Get().Error("Narrative generation failed",
			zap.Error(err),
			zap.String("questionnaireID", questionnaireID))
		return nil, err
	}
	text = narrative.EnsureEvidenceBlock(text, *payload)

	resp := &dto.SummaryResponse{
		Summary:   text,
		Grounding: toGroundingResponse(*payload),
	}

	if cacheable {
		if dataBytes, marshalErr := json.Marshal(resp); marshalErr == nil {
			if setErr := s.cache.Set(ctx, cacheKey, string(dataBytes), s.cfg.Analytics.CacheTTL); setErr != nil {
				logger.Get().Error("Failed to cache summary", zap.Error(setErr), zap.String("cacheKey", cacheKey))
			}
		}
	}

	return resp, nil
}
