package validation

import (
	"formpulse/internal/domain"
	"formpulse/internal/dto"
	"regexp"
	"strings"
	"time"
)

const maxRespondentSearchLen = 100

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateQuestionnaireID validates a questionnaire path parameter
func (v *Validator) ValidateQuestionnaireID(questionnaireID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(questionnaireID) == "" {
		errors = append(errors, domain.NewMissingFieldError("questionnaire_id"))
	} else if !isValidULID(questionnaireID) {
		errors = append(errors, domain.NewInvalidFormatError("questionnaire_id", questionnaireID))
	}

	return errors
}

// ValidateAnalyticsQuery validates the query parameters of an analytics request.
// The segment filter pair must be supplied together or not at all.
func (v *Validator) ValidateAnalyticsQuery(query dto.AnalyticsQuery) domain.ValidationErrors {
	var errors domain.ValidationErrors

	hasDimension := strings.TrimSpace(query.SegmentDimensionID) != ""
	hasBucket := strings.TrimSpace(query.SegmentBucket) != ""
	hasCompare := strings.TrimSpace(query.SegmentBuckets) != ""
	if hasDimension != hasBucket {
		if hasDimension {
			// A dimension without a single bucket is fine in compare mode.
			if !hasCompare {
				errors = append(errors, domain.NewMissingFieldError("segment_bucket"))
			}
		} else {
			errors = append(errors, domain.NewMissingFieldError("segment_dimension_id"))
		}
	}

	if hasCompare && !hasDimension {
		errors = append(errors, domain.NewMissingFieldError("segment_dimension_id"))
	}

	if query.DateFrom != "" && !isValidDate(query.DateFrom) {
		errors = append(errors, domain.NewInvalidFormatError("date_from", query.DateFrom))
	}
	if query.DateTo != "" && !isValidDate(query.DateTo) {
		errors = append(errors, domain.NewInvalidFormatError("date_to", query.DateTo))
	}

	if len(query.RespondentSearch) > maxRespondentSearchLen {
		errors = append(errors, domain.NewOutOfRangeError("respondent_search", len(query.RespondentSearch), 0, maxRespondentSearchLen))
	}

	return errors
}

// ValidateSubmitResponse validates a response submission body
func (v *Validator) ValidateSubmitResponse(req dto.SubmitResponseRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(req.Answers) == 0 {
		errors = append(errors, domain.NewMissingFieldError("answers"))
	}

	for key := range req.Answers {
		if strings.TrimSpace(key) == "" {
			errors = append(errors, domain.NewInvalidFormatError("answers", key))
			break
		}
	}

	return errors
}

// Helper functions for validation

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	// Check if all characters are valid base32 (Crockford's Base32)
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}

// isValidDate checks for the YYYY-MM-DD format used by the date range filters
func isValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
