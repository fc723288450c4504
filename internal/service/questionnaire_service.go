package service

import (
	"context"
	"time"

	"formpulse/internal/analytics"
	"formpulse/internal/cache"
	"formpulse/internal/domain"
	"formpulse/internal/dto"
	"formpulse/internal/logger"
	"formpulse/internal/repository"
	"formpulse/internal/repository/models"
	"formpulse/internal/util"

	"go.uber.org/zap"
)

// QuestionnaireService defines the interface for questionnaire-related operations
type QuestionnaireService interface {
	ListQuestionnaires(ctx context.Context, tenantID string) ([]dto.QuestionnaireResponse, error)
	GetQuestionnaire(ctx context.Context, tenantID, questionnaireID string) (*dto.QuestionnaireResponse, error)
	SubmitResponse(ctx context.Context, tenantID, questionnaireID string, req *dto.SubmitResponseRequest) (*dto.SubmitResponseResponse, error)
}

// questionnaireService implements QuestionnaireService
type questionnaireService struct {
	repo  repository.QuestionnaireRepository
	cache domain.Cache
}

// NewQuestionnaireService creates a new instance of questionnaireService
func NewQuestionnaireService(repo repository.QuestionnaireRepository, cache domain.Cache) QuestionnaireService {
	return &questionnaireService{repo: repo, cache: cache}
}

// ListQuestionnaires implements QuestionnaireService
func (s *questionnaireService) ListQuestionnaires(ctx context.Context, tenantID string) ([]dto.QuestionnaireResponse, error) {
	qs, err := s.repo.ListQuestionnaires(ctx, tenantID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list questionnaires", err)
	}

	responses := make([]dto.QuestionnaireResponse, 0, len(qs))
	for _, q := range qs {
		responses = append(responses, toQuestionnaireResponse(&q, nil))
	}
	return responses, nil
}

// GetQuestionnaire implements QuestionnaireService
func (s *questionnaireService) GetQuestionnaire(ctx context.Context, tenantID, questionnaireID string) (*dto.QuestionnaireResponse, error) {
	q, err := s.repo.GetQuestionnaire(ctx, tenantID, questionnaireID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get questionnaire", err)
	}
	if q == nil {
		return nil, domain.NewQuestionnaireNotFoundError(questionnaireID)
	}

	fieldModels, err := s.repo.GetFields(ctx, q.ID, q.CurrentVersion)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get questionnaire fields", err)
	}

	resp := toQuestionnaireResponse(q, fieldModels)
	return &resp, nil
}

// SubmitResponse implements QuestionnaireService
func (s *questionnaireService) SubmitResponse(ctx context.Context, tenantID, questionnaireID string, req *dto.SubmitResponseRequest) (*dto.SubmitResponseResponse, error) {
	q, err := s.repo.GetQuestionnaire(ctx, tenantID, questionnaireID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get questionnaire", err)
	}
	if q == nil {
		return nil, domain.NewQuestionnaireNotFoundError(questionnaireID)
	}

	row := &models.ResponseRow{
		ID:              util.NewULID(),
		TenantID:        tenantID,
		QuestionnaireID: q.ID,
		Version:         q.CurrentVersion,
		Answers:         models.JSONMap(req.Answers),
		Respondent:      models.JSONMap(req.Respondent),
		CreatedAt:       time.Now(),
	}
	if err := s.repo.SaveResponse(ctx, row); err != nil {
		return nil, domain.NewInternalError("Failed to save response", err)
	}

	s.invalidateAnalyticsCache(ctx, tenantID, q.ID)

	return &dto.SubmitResponseResponse{
		ID:          row.ID,
		SubmittedAt: row.CreatedAt,
	}, nil
}

// invalidateAnalyticsCache drops the cached snapshot and summary after a new
// submission. Failures are logged, never surfaced to the respondent.
func (s *questionnaireService) invalidateAnalyticsCache(ctx context.Context, tenantID, questionnaireID string) {
	if s.cache == nil {
		return
	}
	keys := []string{
		cache.GenerateCacheKey("analytics", "snapshot", questionnaireID, tenantID),
		cache.GenerateCacheKey("analytics", "summary", questionnaireID, tenantID),
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Get().Warn("Failed to invalidate analytics cache",
				zap.Error(err),
				zap.String("cacheKey", key))
		}
	}
}

func toQuestionnaireResponse(q *models.Questionnaire, fieldModels []models.QuestionnaireField) dto.QuestionnaireResponse {
	resp := dto.QuestionnaireResponse{
		ID:             q.ID,
		Title:          q.Title,
		Description:    util.NullStringToString(q.Description),
		CurrentVersion: q.CurrentVersion,
		CreatedAt:      q.CreatedAt,
	}
	if len(fieldModels) == 0 {
		return resp
	}

	fields := analytics.NormalizeFields(toEngineFields(fieldModels))
	resp.Fields = make([]dto.FieldResponse, 0, len(fields))
	for _, f := range fields {
		resp.Fields = append(resp.Fields, dto.FieldResponse{
			Name:         f.Name,
			QuestionCode: f.QuestionCode,
			Type:         string(f.Type),
			Label:        f.Label,
			Criterion:    f.Criterion,
			Options:      f.Options,
			FromLabel:    f.FromLabel,
			ToLabel:      f.ToLabel,
			SegmentRole:  string(f.SegmentRole),
			IsSensitive:  f.Sensitive,
		})
	}
	return resp
}
