package dto

import "time"

// FieldResponse is one questionnaire field in the API response.
type FieldResponse struct {
	Name         string   `json:"name"`
	QuestionCode string   `json:"questionCode"`
	Type         string   `json:"type"`
	Label        string   `json:"label"`
	Criterion    string   `json:"criterion,omitempty"`
	Options      []string `json:"options,omitempty"`
	FromLabel    string   `json:"fromLabel,omitempty"`
	ToLabel      string   `json:"toLabel,omitempty"`
	SegmentRole  string   `json:"segmentRole"`
	IsSensitive  bool     `json:"isSensitive"`
}

// QuestionnaireResponse is one questionnaire in the API response.
type QuestionnaireResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	CurrentVersion int             `json:"currentVersion"`
	Fields         []FieldResponse `json:"fields,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// SubmitResponseRequest is the body for submitting one response row.
type SubmitResponseRequest struct {
	Answers    map[string]interface{} `json:"answers"`
	Respondent map[string]interface{} `json:"respondent,omitempty"`
}

// SubmitResponseResponse acknowledges a stored response row.
type SubmitResponseResponse struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
