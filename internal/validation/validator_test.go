package validation

import (
	"strings"
	"testing"

	"formpulse/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestValidateQuestionnaireID(t *testing.T) {
	v := NewValidator()

	t.Run("valid ULID", func(t *testing.T) {
		assert.Empty(t, v.ValidateQuestionnaireID("01ARZ3NDEKTSV4RRFFQ69G5FAV"))
	})

	t.Run("missing", func(t *testing.T) {
		errs := v.ValidateQuestionnaireID("  ")
		assert.Len(t, errs, 1)
		assert.Equal(t, "questionnaire_id", errs[0].Field)
		assert.Equal(t, "is required", errs[0].Message)
	})

	t.Run("wrong length", func(t *testing.T) {
		errs := v.ValidateQuestionnaireID("short")
		assert.Len(t, errs, 1)
		assert.Equal(t, "has an invalid format", errs[0].Message)
	})

	t.Run("illegal characters", func(t *testing.T) {
		// I, L, O and U are not part of Crockford's alphabet.
		errs := v.ValidateQuestionnaireID("01ARZ3NDEKTSV4RRFFQ69G5FIL")
		assert.Len(t, errs, 1)
	})

	t.Run("lowercase is rejected", func(t *testing.T) {
		errs := v.ValidateQuestionnaireID("01arz3ndektsv4rrffq69g5fav")
		assert.Len(t, errs, 1)
	})
}

func TestValidateAnalyticsQuery(t *testing.T) {
	v := NewValidator()

	t.Run("empty query is valid", func(t *testing.T) {
		assert.Empty(t, v.ValidateAnalyticsQuery(dto.AnalyticsQuery{}))
	})

	t.Run("full drilldown is valid", func(t *testing.T) {
		query := dto.AnalyticsQuery{
			SegmentDimensionID: "question:q6",
			SegmentBucket:      "Kelas 7",
			DateFrom:           "2026-08-01",
			DateTo:             "2026-08-31",
			RespondentSearch:   "guru",
		}
		assert.Empty(t, v.ValidateAnalyticsQuery(query))
	})

	t.Run("dimension without bucket", func(t *testing.T) {
		errs := v.ValidateAnalyticsQuery(dto.AnalyticsQuery{SegmentDimensionID: "question:q6"})
		assert.Len(t, errs, 1)
		assert.Equal(t, "segment_bucket", errs[0].Field)
	})

	t.Run("bucket without dimension", func(t *testing.T) {
		errs := v.ValidateAnalyticsQuery(dto.AnalyticsQuery{SegmentBucket: "Kelas 7"})
		assert.Len(t, errs, 1)
		assert.Equal(t, "segment_dimension_id", errs[0].Field)
	})

	t.Run("compare mode needs no single bucket", func(t *testing.T) {
		query := dto.AnalyticsQuery{
			SegmentDimensionID: "question:q6",
			SegmentBuckets:     "Kelas 7,Kelas 8",
		}
		assert.Empty(t, v.ValidateAnalyticsQuery(query))
	})

	t.Run("compare mode without dimension", func(t *testing.T) {
		errs := v.ValidateAnalyticsQuery(dto.AnalyticsQuery{SegmentBuckets: "Kelas 7,Kelas 8"})
		assert.Len(t, errs, 1)
		assert.Equal(t, "segment_dimension_id", errs[0].Field)
	})

	t.Run("bad date formats", func(t *testing.T) {
		errs := v.ValidateAnalyticsQuery(dto.AnalyticsQuery{DateFrom: "01-08-2026", DateTo: "2026-13-40"})
		assert.Len(t, errs, 2)
		assert.Equal(t, "date_from", errs[0].Field)
		assert.Equal(t, "date_to", errs[1].Field)
	})

	t.Run("respondent search length cap", func(t *testing.T) {
		errs := v.ValidateAnalyticsQuery(dto.AnalyticsQuery{RespondentSearch: strings.Repeat("a", maxRespondentSearchLen+1)})
		assert.Len(t, errs, 1)
		assert.Equal(t, "respondent_search", errs[0].Field)
	})
}

func TestValidateSubmitResponse(t *testing.T) {
	v := NewValidator()

	t.Run("valid submission", func(t *testing.T) {
		req := dto.SubmitResponseRequest{
			Answers:    map[string]interface{}{"q1": 4},
			Respondent: map[string]interface{}{"peran": "Guru"},
		}
		assert.Empty(t, v.ValidateSubmitResponse(req))
	})

	t.Run("no answers", func(t *testing.T) {
		errs := v.ValidateSubmitResponse(dto.SubmitResponseRequest{})
		assert.Len(t, errs, 1)
		assert.Equal(t, "answers", errs[0].Field)
		assert.Equal(t, "is required", errs[0].Message)
	})

	t.Run("blank answer key", func(t *testing.T) {
		req := dto.SubmitResponseRequest{Answers: map[string]interface{}{" ": 4}}
		errs := v.ValidateSubmitResponse(req)
		assert.Len(t, errs, 1)
		assert.Equal(t, "has an invalid format", errs[0].Message)
	})
}
