package dto

import "time"

// AnalyticsQuery carries the query parameters of one analytics request.
type AnalyticsQuery struct {
	SegmentDimensionID string
	SegmentBucket      string
	SegmentBuckets     string
	DateFrom           string
	DateTo             string
	RespondentSearch   string
}

// OptionCountResponse is one tallied choice value.
type OptionCountResponse struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// QuestionDistributionResponse is the per-question tally in the API response.
type QuestionDistributionResponse struct {
	Name          string                `json:"name"`
	QuestionCode  string                `json:"questionCode"`
	Label         string                `json:"label"`
	Type          string                `json:"type"`
	Criterion     string                `json:"criterion,omitempty"`
	TotalAnswered int                   `json:"totalAnswered"`
	ScaleCounts   map[int]int           `json:"scaleCounts,omitempty"`
	Average       float64               `json:"average,omitempty"`
	Options       []OptionCountResponse `json:"options,omitempty"`
	TotalSelected int                   `json:"totalSelected,omitempty"`
	Samples       []string              `json:"samples,omitempty"`
}

// CriteriaSummaryResponse is one per-criterion rollup entry.
type CriteriaSummaryResponse struct {
	Criterion           string   `json:"criterion"`
	TotalQuestions      int      `json:"totalQuestions"`
	TotalScaleQuestions int      `json:"totalScaleQuestions"`
	TotalScaleAnswered  int      `json:"totalScaleAnswered"`
	AvgScale            float64  `json:"avgScale"`
	QuestionCodes       []string `json:"questionCodes"`
}

// BucketResponse is one bucket of a segmentation dimension.
type BucketResponse struct {
	Label               string   `json:"label"`
	Total               int      `json:"total"`
	AvgScale            *float64 `json:"avgScale,omitempty"`
	TotalScaleAnswered  int      `json:"totalScaleAnswered,omitempty"`
	TotalQuestions      int      `json:"totalQuestions,omitempty"`
	TotalScaleQuestions int      `json:"totalScaleQuestions,omitempty"`
}

// SegmentDimensionResponse is one discovered segmentation dimension.
type SegmentDimensionResponse struct {
	ID                string           `json:"id"`
	Kind              string           `json:"kind"`
	Label             string           `json:"label"`
	Metric            string           `json:"metric"`
	DrilldownEligible bool             `json:"drilldownEligible"`
	Buckets           []BucketResponse `json:"buckets"`
}

// SegmentSummaryResponse groups all discovered dimensions.
type SegmentSummaryResponse struct {
	TotalDimensions int                        `json:"totalDimensions"`
	Dimensions      []SegmentDimensionResponse `json:"dimensions"`
}

// SegmentFilterResponse echoes an applied drilldown filter with the
// "N of M" counts for display.
type SegmentFilterResponse struct {
	DimensionID    string `json:"dimensionId"`
	Bucket         string `json:"bucket"`
	FilteredCount  int    `json:"filteredCount"`
	CandidateCount int    `json:"candidateCount"`
}

// CompareBucketResponse is one side-by-side compare entry.
type CompareBucketResponse struct {
	Bucket             string   `json:"bucket"`
	Total              int      `json:"total"`
	AvgScale           *float64 `json:"avgScale,omitempty"`
	TotalScaleAnswered int      `json:"totalScaleAnswered,omitempty"`
}

// SegmentCompareResponse is the compare-mode result.
type SegmentCompareResponse struct {
	DimensionID string                  `json:"dimensionId"`
	Metric      string                  `json:"metric"`
	Buckets     []CompareBucketResponse `json:"buckets"`
}

// AnalyticsResponse is the full distribution result for one questionnaire.
type AnalyticsResponse struct {
	ByQuestion                  []QuestionDistributionResponse `json:"byQuestion"`
	QuestionAverages            map[string]float64             `json:"questionAverages"`
	ScaleAverages               []float64                      `json:"scaleAverages"`
	CriteriaSummary             []CriteriaSummaryResponse      `json:"criteriaSummary"`
	SegmentSummary              SegmentSummaryResponse         `json:"segmentSummary"`
	TotalQuestionsWithCriterion int                            `json:"totalQuestionsWithCriterion"`
	AvgScaleOverall             float64                        `json:"avgScaleOverall"`
	TotalChoiceAnswers          int                            `json:"totalChoiceAnswers"`
	TotalCheckboxAnswers        int                            `json:"totalCheckboxAnswers"`
	TotalTextAnswers            int                            `json:"totalTextAnswers"`
	TotalResponses              int                            `json:"totalResponses"`
	SegmentFilter               *SegmentFilterResponse         `json:"segmentFilter,omitempty"`
	SegmentCompare              *SegmentCompareResponse        `json:"segmentCompare,omitempty"`
}

// CriteriaHighlightResponse names the top or bottom criterion.
type CriteriaHighlightResponse struct {
	Criterion string  `json:"criterion"`
	AvgScale  float64 `json:"avgScale"`
}

// GroundingCriteriaResponse holds both highlight slots.
type GroundingCriteriaResponse struct {
	Top    *CriteriaHighlightResponse `json:"top"`
	Bottom *CriteriaHighlightResponse `json:"bottom"`
}

// GroundingSegmentResponse summarizes segmentation availability.
type GroundingSegmentResponse struct {
	TotalDimensions int `json:"totalDimensions"`
	TotalBuckets    int `json:"totalBuckets"`
}

// GroundingResponse is the confidence/data-quality snapshot consumed by the
// dashboard and the LLM prompt builder.
type GroundingResponse struct {
	Available       bool                      `json:"available"`
	SampleSize      int                       `json:"sampleSize"`
	Confidence      string                    `json:"confidence"`
	Warnings        []string                  `json:"warnings"`
	AvgScaleOverall float64                   `json:"avgScaleOverall"`
	LastSubmittedAt *time.Time                `json:"lastSubmittedAt"`
	Criteria        GroundingCriteriaResponse `json:"criteria"`
	Segment         GroundingSegmentResponse  `json:"segment"`
	Facts           []string                  `json:"facts"`
}

// SummaryResponse is the AI-written narrative plus the grounding it was
// built from.
type SummaryResponse struct {
	Summary   string            `json:"summary"`
	Grounding GroundingResponse `json:"grounding"`
}
