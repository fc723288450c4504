package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"formpulse/internal/analytics"
	"formpulse/internal/cache"
	"formpulse/internal/domain"
	"formpulse/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func promptPayload() *analytics.GroundingPayload {
	return &analytics.GroundingPayload{
		Available:  true,
		SampleSize: 180,
		Confidence: analytics.ConfidenceHigh,
		Facts: []string{
			"Rata-rata skor keseluruhan = 4.20 dari 5",
			"Kriteria tertinggi = Akademik (rata-rata 4.50)",
		},
	}
}

func TestSummaryService_GetSummary(t *testing.T) {
	ctx := context.Background()
	query := dto.AnalyticsQuery{}

	t.Run("generates a grounded summary", func(t *testing.T) {
		analyticsSvc := new(MockAnalyticsService)
		generator := new(MockNarrativeGenerator)
		analyticsSvc.On("GroundingForPrompt", mock.Anything, testTenantID, testQuestionnaireID, query).
			Return(promptPayload(), "Survei Kepuasan Sekolah", nil).Once()
		generator.On("GenerateSummary", mock.Anything, "Survei Kepuasan Sekolah", mock.AnythingOfType("string")).
			Return("Skor rata-rata 4.20 sangat baik [B1]. Bukti data mendukung temuan ini.", nil).Once()
		svc := NewSummaryService(analyticsSvc, generator, nil, testConfig())

		resp, err := svc.GetSummary(ctx, testTenantID, testQuestionnaireID, query)

		assert.NoError(t, err)
		assert.Contains(t, resp.Summary, "[B1]")
		assert.Equal(t, 180, resp.Grounding.SampleSize)
		analyticsSvc.AssertExpectations(t)
		generator.AssertExpectations(t)
	})

	t.Run("prompt carries the grounding tail", func(t *testing.T) {
		analyticsSvc := new(MockAnalyticsService)
		generator := new(MockNarrativeGenerator)
		analyticsSvc.On("GroundingForPrompt", mock.Anything, testTenantID, testQuestionnaireID, query).
			Return(promptPayload(), "Survei", nil)
		var capturedPrompt string
		generator.On("GenerateSummary", mock.Anything, "Survei", mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { capturedPrompt = args.String(2) }).
			Return("Ringkasan 4.20 [B1] berdasarkan bukti data.", nil)
		svc := NewSummaryService(analyticsSvc, generator, nil, testConfig())

		_, err := svc.GetSummary(ctx, testTenantID, testQuestionnaireID, query)

		assert.NoError(t, err)
		assert.Contains(t, capturedPrompt, "Instruksi Wajib Grounding:")
		assert.Contains(t, capturedPrompt, "sample_size = 180")
	})

	t.Run("ungrounded output gets an evidence block appended", func(t *testing.T) {
		analyticsSvc := new(MockAnalyticsService)
		generator := new(MockNarrativeGenerator)
		analyticsSvc.On("GroundingForPrompt", mock.Anything, testTenantID, testQuestionnaireID, query).
			Return(promptPayload(), "Survei", nil)
		generator.On("GenerateSummary", mock.Anything, "Survei", mock.AnythingOfType("string")).
			Return("Hasil kuesioner secara umum positif.", nil)
		svc := NewSummaryService(analyticsSvc, generator, nil, testConfig())

		resp, err := svc.GetSummary(ctx, testTenantID, testQuestionnaireID, query)

		assert.NoError(t, err)
		assert.Contains(t, resp.Summary, "Bukti data:")
		assert.Contains(t, resp.Summary, "[B1] Rata-rata skor keseluruhan = 4.20 dari 5")
	})

	t.Run("missing generator", func(t *testing.T) {
		svc := NewSummaryService(new(MockAnalyticsService), nil, nil, testConfig())

		_, err := svc.GetSummary(ctx, testTenantID, testQuestionnaireID, query)

		var domainErr *domain.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeLLMServiceError, domainErr.Code)
	})

	t.Run("no data to summarize", func(t *testing.T) {
		analyticsSvc := new(MockAnalyticsService)
		generator := new(MockNarrativeGenerator)
		empty := &analytics.GroundingPayload{Available: false}
		analyticsSvc.On("GroundingForPrompt", mock.Anything, testTenantID, testQuestionnaireID, query).
			Return(empty, "Survei", nil)
		svc := NewSummaryService(analyticsSvc, generator, nil, testConfig())

		_, err := svc.GetSummary(ctx, testTenantID, testQuestionnaireID, query)

		var domainErr *domain.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
		generator.AssertNotCalled(t, "GenerateSummary", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("generator failure is surfaced", func(t *testing.T) {
		analyticsSvc := new(MockAnalyticsService)
		generator := new(MockNarrativeGenerator)
		analyticsSvc.On("GroundingForPrompt", mock.Anything, testTenantID, testQuestionnaireID, query).
			Return(promptPayload(), "Survei", nil)
		generator.On("GenerateSummary", mock.Anything, "Survei", mock.AnythingOfType("string")).
			Return("", errors.New("ollama unreachable"))
		svc := NewSummaryService(analyticsSvc, generator, nil, testConfig())

		_, err := svc.GetSummary(ctx, testTenantID, testQuestionnaireID, query)
		assert.Error(t, err)
	})

	t.Run("cache hit skips generation", func(t *testing.T) {
		analyticsSvc := new(MockAnalyticsService)
		generator := new(MockNarrativeGenerator)
		mockCache := new(MockCache)
		cached := &dto.SummaryResponse{Summary: "Ringkasan dari cache [B1]."}
		cachedBytes, _ := json.Marshal(cached)
		cacheKey := cache.GenerateCacheKey("analytics", "summary", testQuestionnaireID, testTenantID)
		mockCache.On("Get", mock.Anything, cacheKey).Return(string(cachedBytes), nil).Once()
		svc := NewSummaryService(analyticsSvc, generator, mockCache, testConfig())

		resp, err := svc.GetSummary(ctx, testTenantID, testQuestionnaireID, query)

		assert.NoError(t, err)
		assert.Equal(t, "Ringkasan dari cache [B1].", resp.Summary)
		generator.AssertNotCalled(t, "GenerateSummary", mock.Anything, mock.Anything, mock.Anything)
		mockCache.AssertExpectations(t)
	})

	t.Run("cache miss stores the fresh summary", func(t *testing.T) {
		analyticsSvc := new(MockAnalyticsService)
		generator := new(MockNarrativeGenerator)
		mockCache := new(MockCache)
		cacheKey := cache.GenerateCacheKey("analytics", "summary", testQuestionnaireID, testTenantID)
		mockCache.On("Get", mock.Anything, cacheKey).Return("", domain.ErrCacheMiss).Once()
		mockCache.On("Set", mock.Anything, cacheKey, mock.AnythingOfType("string"), 5*time.Minute).Return(nil).Once()
		analyticsSvc.On("GroundingForPrompt", mock.Anything, testTenantID, testQuestionnaireID, query).
			Return(promptPayload(), "Survei", nil)
		generator.On("GenerateSummary", mock.Anything, "Survei", mock.AnythingOfType("string")).
			Return("Skor 4.20 [B1] menurut bukti data.", nil)
		svc := NewSummaryService(analyticsSvc, generator, mockCache, testConfig())

		_, err := svc.GetSummary(ctx, testTenantID, testQuestionnaireID, query)

		assert.NoError(t, err)
		mockCache.AssertExpectations(t)
	})

	t.Run("filtered summary is not cached", func(t *testing.T) {
		analyticsSvc := new(MockAnalyticsService)
		generator := new(MockNarrativeGenerator)
		mockCache := new(MockCache)
		filtered := dto.AnalyticsQuery{SegmentDimensionID: "question:q2", SegmentBucket: "Kelas 7"}
		analyticsSvc.On("GroundingForPrompt", mock.Anything, testTenantID, testQuestionnaireID, filtered).
			Return(promptPayload(), "Survei", nil)
		generator.On("GenerateSummary", mock.Anything, "Survei", mock.AnythingOfType("string")).
			Return("Skor 4.20 [B1] menurut bukti data.", nil)
		svc := NewSummaryService(analyticsSvc, generator, mockCache, testConfig())

		_, err := svc.GetSummary(ctx, testTenantID, testQuestionnaireID, filtered)

		assert.NoError(t, err)
		mockCache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
