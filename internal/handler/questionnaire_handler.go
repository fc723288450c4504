package handler

import (
	"formpulse/internal/dto"
	"formpulse/internal/logger"
	"formpulse/internal/service"
	"formpulse/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuestionnaireHandler handles questionnaire-related HTTP requests
type QuestionnaireHandler struct {
	service   service.QuestionnaireService
	validator *validation.Validator
}

// NewQuestionnaireHandler creates a new QuestionnaireHandler instance
func NewQuestionnaireHandler(service service.QuestionnaireService, validator *validation.Validator) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		service:   service,
		validator: validator,
	}
}

// ListQuestionnaires godoc
// @Summary List questionnaires
// @Description Returns the questionnaires owned by the authenticated tenant
// @Tags questionnaires
// @Accept json
// @Produce json
// @Success 200 {array} dto.QuestionnaireResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /questionnaires [get]
func (h *QuestionnaireHandler) ListQuestionnaires(c *fiber.Ctx) error {
	result, err := h.service.ListQuestionnaires(c.Context(), tenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetQuestionnaire godoc
// @Summary Get one questionnaire
// @Description Returns a questionnaire with its current field schema
// @Tags questionnaires
// @Accept json
// @Produce json
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} dto.QuestionnaireResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /questionnaires/{id} [get]
func (h *QuestionnaireHandler) GetQuestionnaire(c *fiber.Ctx) error {
	questionnaireID := c.Params("id")
	if errs := h.validator.ValidateQuestionnaireID(questionnaireID); len(errs) > 0 {
		return errs
	}

	result, err := h.service.GetQuestionnaire(c.Context(), tenantID(c), questionnaireID)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// SubmitResponse godoc
// @Summary Submit a response
// @Description Stores one response row for a questionnaire. Respondents are anonymous; the tenant comes from the share link.
// @Tags responses
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID from the share link"
// @Param id path string true "Questionnaire ID"
// @Param request body dto.SubmitResponseRequest true "Answers keyed by field name"
// @Success 201 {object} dto.SubmitResponseResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /public/{tenantId}/questionnaires/{id}/responses [post]
func (h *QuestionnaireHandler) SubmitResponse(c *fiber.Ctx) error {
	shareTenantID := c.Params("tenantId")
	questionnaireID := c.Params("id")
	if errs := h.validator.ValidateQuestionnaireID(questionnaireID); len(errs) > 0 {
		return errs
	}

	var req dto.SubmitResponseRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Warn("Failed to parse response submission body",
			zap.Error(err),
			zap.String("questionnaireID", questionnaireID))
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidateSubmitResponse(req); len(errs) > 0 {
		return errs
	}

	result, err := h.service.SubmitResponse(c.Context(), shareTenantID, questionnaireID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
