package service

import (
	"context"
	"errors"
	"testing"

	"formpulse/internal/cache"
	"formpulse/internal/domain"
	"formpulse/internal/dto"
	"formpulse/internal/repository/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestQuestionnaireService_ListQuestionnaires(t *testing.T) {
	ctx := context.Background()

	t.Run("maps repository rows", func(t *testing.T) {
		repo := new(MockQuestionnaireRepository)
		repo.On("ListQuestionnaires", mock.Anything, testTenantID).
			Return([]models.Questionnaire{*testQuestionnaire()}, nil).Once()
		svc := NewQuestionnaireService(repo, nil)

		resp, err := svc.ListQuestionnaires(ctx, testTenantID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, testQuestionnaireID, resp[0].ID)
		assert.Equal(t, "Survei Kepuasan Sekolah", resp[0].Title)
		assert.Empty(t, resp[0].Fields)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockQuestionnaireRepository)
		repo.On("ListQuestionnaires", mock.Anything, testTenantID).
			Return(nil, errors.New("db down")).Once()
		svc := NewQuestionnaireService(repo, nil)

		_, err := svc.ListQuestionnaires(ctx, testTenantID)

		var domainErr *domain.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeInternal, domainErr.Code)
	})
}

func TestQuestionnaireService_GetQuestionnaire(t *testing.T) {
	ctx := context.Background()

	t.Run("includes the normalized field schema", func(t *testing.T) {
		repo := new(MockQuestionnaireRepository)
		repo.On("GetQuestionnaire", mock.Anything, testTenantID, testQuestionnaireID).
			Return(testQuestionnaire(), nil).Once()
		repo.On("GetFields", mock.Anything, testQuestionnaireID, 2).
			Return(testFieldModels(), nil).Once()
		svc := NewQuestionnaireService(repo, nil)

		resp, err := svc.GetQuestionnaire(ctx, testTenantID, testQuestionnaireID)

		assert.NoError(t, err)
		assert.Len(t, resp.Fields, 2)
		assert.Equal(t, "Q1", resp.Fields[0].QuestionCode)
		// Scale endpoint labels default during normalization.
		assert.Equal(t, "Rendah", resp.Fields[0].FromLabel)
		assert.Equal(t, "Tinggi", resp.Fields[0].ToLabel)
		assert.Equal(t, "auto", resp.Fields[0].SegmentRole)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockQuestionnaireRepository)
		repo.On("GetQuestionnaire", mock.Anything, testTenantID, testQuestionnaireID).
			Return(nil, nil).Once()
		svc := NewQuestionnaireService(repo, nil)

		_, err := svc.GetQuestionnaire(ctx, testTenantID, testQuestionnaireID)

		var domainErr *domain.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeQuestionnaireNotFound, domainErr.Code)
	})
}

func TestQuestionnaireService_SubmitResponse(t *testing.T) {
	ctx := context.Background()
	req := &dto.SubmitResponseRequest{
		Answers:    map[string]interface{}{"q1": 4, "q2": "Kelas 7"},
		Respondent: map[string]interface{}{"peran": "Guru"},
	}

	t.Run("persists the row and invalidates caches", func(t *testing.T) {
		repo := new(MockQuestionnaireRepository)
		mockCache := new(MockCache)
		repo.On("GetQuestionnaire", mock.Anything, testTenantID, testQuestionnaireID).
			Return(testQuestionnaire(), nil).Once()

		var savedRow *models.ResponseRow
		repo.On("SaveResponse", mock.Anything, mock.AnythingOfType("*models.ResponseRow")).
			Run(func(args mock.Arguments) { savedRow = args.Get(1).(*models.ResponseRow) }).
			Return(nil).Once()

		snapshotKey := cache.GenerateCacheKey("analytics", "snapshot", testQuestionnaireID, testTenantID)
		summaryKey := cache.GenerateCacheKey("analytics", "summary", testQuestionnaireID, testTenantID)
		mockCache.On("Delete", mock.Anything, snapshotKey).Return(nil).Once()
		mockCache.On("Delete", mock.Anything, summaryKey).Return(nil).Once()

		svc := NewQuestionnaireService(repo, mockCache)
		resp, err := svc.SubmitResponse(ctx, testTenantID, testQuestionnaireID, req)

		assert.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.False(t, resp.SubmittedAt.IsZero())

		assert.Equal(t, testTenantID, savedRow.TenantID)
		assert.Equal(t, testQuestionnaireID, savedRow.QuestionnaireID)
		// Rows always land on the questionnaire's current version.
		assert.Equal(t, 2, savedRow.Version)
		assert.Equal(t, models.JSONMap(req.Answers), savedRow.Answers)

		repo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("cache invalidation failure never blocks the respondent", func(t *testing.T) {
		repo := new(MockQuestionnaireRepository)
		mockCache := new(MockCache)
		repo.On("GetQuestionnaire", mock.Anything, testTenantID, testQuestionnaireID).
			Return(testQuestionnaire(), nil).Once()
		repo.On("SaveResponse", mock.Anything, mock.AnythingOfType("*models.ResponseRow")).Return(nil).Once()
		mockCache.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(errors.New("redis down")).Twice()

		svc := NewQuestionnaireService(repo, mockCache)
		resp, err := svc.SubmitResponse(ctx, testTenantID, testQuestionnaireID, req)

		assert.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("unknown questionnaire", func(t *testing.T) {
		repo := new(MockQuestionnaireRepository)
		repo.On("GetQuestionnaire", mock.Anything, testTenantID, testQuestionnaireID).
			Return(nil, nil).Once()
		svc := NewQuestionnaireService(repo, nil)

		_, err := svc.SubmitResponse(ctx, testTenantID, testQuestionnaireID, req)

		var domainErr *domain.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeQuestionnaireNotFound, domainErr.Code)
		repo.AssertNotCalled(t, "SaveResponse", mock.Anything, mock.Anything)
	})

	t.Run("save failure", func(t *testing.T) {
		repo := new(MockQuestionnaireRepository)
		repo.On("GetQuestionnaire", mock.Anything, testTenantID, testQuestionnaireID).
			Return(testQuestionnaire(), nil).Once()
		repo.On("SaveResponse", mock.Anything, mock.AnythingOfType("*models.ResponseRow")).
			Return(errors.New("constraint violated")).Once()
		svc := NewQuestionnaireService(repo, nil)

		_, err := svc.SubmitResponse(ctx, testTenantID, testQuestionnaireID, req)

		var domainErr *domain.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeInternal, domainErr.Code)
	})
}
