package service

import (
	"context"
	"time"

	"formpulse/internal/analytics"
	"formpulse/internal/domain"
	"formpulse/internal/dto"
	"formpulse/internal/repository/models"

	"github.com/stretchr/testify/mock"
)

// --- MockQuestionnaireRepository ---
type MockQuestionnaireRepository struct {
	mock.Mock
}

func (m *MockQuestionnaireRepository) GetQuestionnaire(ctx context.Context, tenantID, id string) (*models.Questionnaire, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Questionnaire), args.Error(1)
}

func (m *MockQuestionnaireRepository) ListQuestionnaires(ctx context.Context, tenantID string) ([]models.Questionnaire, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Questionnaire), args.Error(1)
}

func (m *MockQuestionnaireRepository) GetFields(ctx context.Context, questionnaireID string, version int) ([]models.QuestionnaireField, error) {
	args := m.Called(ctx, questionnaireID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuestionnaireField), args.Error(1)
}

func (m *MockQuestionnaireRepository) GetResponses(ctx context.Context, tenantID, questionnaireID string, version int, filter domain.ResponseFilter) ([]models.ResponseRow, error) {
	args := m.Called(ctx, tenantID, questionnaireID, version, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ResponseRow), args.Error(1)
}

func (m *MockQuestionnaireRepository) SaveResponse(ctx context.Context, row *models.ResponseRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockNarrativeGenerator ---
type MockNarrativeGenerator struct {
	mock.Mock
}

func (m *MockNarrativeGenerator) GenerateSummary(ctx context.Context, questionnaireTitle string, prompt string) (string, error) {
	args := m.Called(ctx, questionnaireTitle, prompt)
	return args.String(0), args.Error(1)
}

// --- MockAnalyticsService ---
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetAnalytics(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*dto.AnalyticsResponse, error) {
	args := m.Called(ctx, tenantID, questionnaireID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AnalyticsResponse), args.Error(1)
}

func (m *MockAnalyticsService) GetGrounding(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*dto.GroundingResponse, error) {
	args := m.Called(ctx, tenantID, questionnaireID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GroundingResponse), args.Error(1)
}

func (m *MockAnalyticsService) GroundingForPrompt(ctx context.Context, tenantID, questionnaireID string, query dto.AnalyticsQuery) (*analytics.GroundingPayload, string, error) {
	args := m.Called(ctx, tenantID, questionnaireID, query)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*analytics.GroundingPayload), args.String(1), args.Error(2)
}
