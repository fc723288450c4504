package seedmodels

// SeedField defines one questionnaire field in the JSON seed file.
type SeedField struct {
	Name        string   `json:"name"`
	FieldType   string   `json:"field_type"`
	Label       string   `json:"label"`
	Criterion   string   `json:"criterion"`
	Options     []string `json:"options"`
	FromLabel   string   `json:"from_label"`
	ToLabel     string   `json:"to_label"`
	SegmentRole string   `json:"segment_role"`
	IsSensitive bool     `json:"is_sensitive"`
}

// SeedRespondentAttribute defines one respondent attribute and the values the
// generated demo responses draw from.
type SeedRespondentAttribute struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// SeedQuestionnaire defines the structure of the JSON seed file.
type SeedQuestionnaire struct {
	TenantName           string                    `json:"tenant_name"`
	Title                string                    `json:"title"`
	Description          string                    `json:"description"`
	Fields               []SeedField               `json:"fields"`
	RespondentAttributes []SeedRespondentAttribute `json:"respondent_attributes"`
	TextSamples          []string                  `json:"text_samples"`
	ResponseCount        int                       `json:"response_count"`
}
