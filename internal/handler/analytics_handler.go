package handler

import (
	"strings"

	"formpulse/internal/dto"
	"formpulse/internal/middleware"
	"formpulse/internal/service"
	"formpulse/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AnalyticsHandler handles analytics-related HTTP requests
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	summaryService   service.SummaryService
	validator        *validation.Validator
}

// NewAnalyticsHandler creates a new AnalyticsHandler instance
func NewAnalyticsHandler(analyticsService service.AnalyticsService, summaryService service.SummaryService, validator *validation.Validator) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		summaryService:   summaryService,
		validator:        validator,
	}
}

// GetAnalytics godoc
// @Summary Get questionnaire analytics
// @Description Returns per-question distributions, criteria rollups and segmentation for a questionnaire
// @Tags analytics
// @Accept json
// @Produce json
// @Param id path string true "Questionnaire ID"
// @Param segmentDimensionId query string false "Segmentation dimension to filter by"
// @Param segmentBucket query string false "Bucket label to filter by"
// @Param segmentBuckets query string false "Comma-separated bucket labels to compare (max 3)"
// @Param dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param dateTo query string false "End date (YYYY-MM-DD)"
// @Param respondentSearch query string false "Respondent attribute substring"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /questionnaires/{id}/analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	questionnaireID := c.Params("id")
	query := parseAnalyticsQuery(c)

	if errs := h.validator.ValidateQuestionnaireID(questionnaireID); len(errs) > 0 {
		return errs
	}
	if errs := h.validator.ValidateAnalyticsQuery(query); len(errs) > 0 {
		return errs
	}

	result, err := h.analyticsService.GetAnalytics(c.Context(), tenantID(c), questionnaireID, query)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetGrounding godoc
// @Summary Get analytics grounding snapshot
// @Description Returns the confidence, warnings and fact lines backing the dashboard and AI summary
// @Tags analytics
// @Accept json
// @Produce json
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} dto.GroundingResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /questionnaires/{id}/analytics/grounding [get]
func (h *AnalyticsHandler) GetGrounding(c *fiber.Ctx) error {
	questionnaireID := c.Params("id")
	query := parseAnalyticsQuery(c)

	if errs := h.validator.ValidateQuestionnaireID(questionnaireID); len(errs) > 0 {
		return errs
	}
	if errs := h.validator.ValidateAnalyticsQuery(query); len(errs) > 0 {
		return errs
	}

	result, err := h.analyticsService.GetGrounding(c.Context(), tenantID(c), questionnaireID, query)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetSummary godoc
// @Summary Get AI narrative summary
// @Description Returns an AI-written narrative of the questionnaire results, grounded on the analytics facts
// @Tags analytics
// @Accept json
// @Produce json
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /questionnaires/{id}/analytics/summary [get]
func (h *AnalyticsHandler) GetSummary(c *fiber.Ctx) error {
	questionnaireID := c.Params("id")
	query := parseAnalyticsQuery(c)

	if errs := h.validator.ValidateQuestionnaireID(questionnaireID); len(errs) > 0 {
		return errs
	}
	if errs := h.validator.ValidateAnalyticsQuery(query); len(errs) > 0 {
		return errs
	}

	result, err := h.summaryService.GetSummary(c.Context(), tenantID(c), questionnaireID, query)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func parseAnalyticsQuery(c *fiber.Ctx) dto.AnalyticsQuery {
	return dto.AnalyticsQuery{
		SegmentDimensionID: c.Query("segmentDimensionId"),
		SegmentBucket:      c.Query("segmentBucket"),
		SegmentBuckets:     rawQueryParam(c, "segmentBuckets"),
		DateFrom:           c.Query("dateFrom"),
		DateTo:             c.Query("dateTo"),
		RespondentSearch:   c.Query("respondentSearch"),
	}
}

// rawQueryParam returns the still-encoded value of one query parameter.
// Bucket labels may contain commas; the comparison parser needs to split on
// separator commas before percent-decoding the labels.
func rawQueryParam(c *fiber.Ctx, key string) string {
	for _, pair := range strings.Split(string(c.Request().URI().QueryString()), "&") {
		if strings.HasPrefix(pair, key+"=") {
			return strings.TrimPrefix(pair, key+"=")
		}
	}
	return ""
}

func tenantID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.TenantIDKey).(string); ok {
		return id
	}
	return ""
}
