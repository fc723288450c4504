package middleware_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"formpulse/internal/domain"
	"formpulse/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func errorTestApp(handlerErr error) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return handlerErr
	})
	return app
}

func performRequest(t *testing.T, app *fiber.App) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	assert.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := errorTestApp(domain.ValidationErrors{
		domain.NewMissingFieldError("questionnaire_id"),
		domain.NewInvalidFormatError("date_from", "not-a-date"),
	})

	status, body := performRequest(t, app)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, string(domain.CodeValidation), body["code"])
	assert.Equal(t, "Request validation failed", body["message"])

	errs, ok := body["errors"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, errs, 2)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, "questionnaire_id", first["field"])
	assert.Equal(t, "is required", first["message"])
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            *domain.DomainError
		expectedStatus int
	}{
		{
			name:           "questionnaire not found",
			err:            domain.NewQuestionnaireNotFoundError("q1"),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid segment filter",
			err:            domain.NewInvalidSegmentFilterError("unknown dimension"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid input",
			err:            domain.NewInvalidInputError("dateTo precedes dateFrom"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unauthorized",
			err:            domain.NewUnauthorizedError("token revoked"),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "llm unavailable",
			err:            domain.NewLLMServiceError(errors.New("connection refused")),
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "internal",
			err:            domain.NewInternalError("unexpected", errors.New("boom")),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := performRequest(t, errorTestApp(tc.err))

			assert.Equal(t, tc.expectedStatus, status)
			assert.Equal(t, string(tc.err.Code), body["code"])
			assert.Equal(t, tc.err.Message, body["message"])
			assert.Equal(t, float64(tc.expectedStatus), body["status"])
		})
	}
}

func TestErrorHandler_DomainErrorContext(t *testing.T) {
	domainErr := domain.NewInvalidSegmentFilterError("bucket does not exist")
	domainErr.Context = map[string]interface{}{"segment_bucket": "Kelas 99"}

	status, body := performRequest(t, errorTestApp(domainErr))

	assert.Equal(t, http.StatusBadRequest, status)
	details, ok := body["details"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "Kelas 99", details["segment_bucket"])
}

func TestErrorHandler_WrappedDomainError(t *testing.T) {
	wrapped := fmt.Errorf("loading snapshot: %w", domain.NewQuestionnaireNotFoundError("q2"))

	status, body := performRequest(t, errorTestApp(wrapped))

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, string(domain.CodeQuestionnaireNotFound), body["code"])
}

func TestErrorHandler_FiberError(t *testing.T) {
	status, body := performRequest(t, errorTestApp(fiber.NewError(fiber.StatusMethodNotAllowed, "method not allowed")))

	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "HTTP_ERROR", body["code"])
	assert.Equal(t, "method not allowed", body["message"])
}

func TestErrorHandler_UnknownError(t *testing.T) {
	status, body := performRequest(t, errorTestApp(errors.New("something exploded")))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, string(domain.CodeInternal), body["code"])
	assert.Equal(t, "Internal server error", body["message"])
}
