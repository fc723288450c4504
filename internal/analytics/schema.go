package analytics

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FieldType enumerates the answer shapes a questionnaire field can take.
type FieldType string

const (
	FieldScale    FieldType = "scale"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldText     FieldType = "text"
)

// SegmentRole hints whether a field may be discovered as a segmentation
// dimension. Sensitive fields are always excluded regardless of role.
type SegmentRole string

const (
	SegmentRoleAuto      SegmentRole = "auto"
	SegmentRoleDimension SegmentRole = "dimension"
	SegmentRoleExclude   SegmentRole = "exclude"
)

// Default endpoint labels for scale questions.
const (
	DefaultFromLabel = "Rendah"
	DefaultToLabel   = "Tinggi"
)

// Field describes one questionnaire question after normalization.
type Field struct {
	Name         string
	QuestionCode string
	Type         FieldType
	Label        string
	Criterion    string
	Options      []string
	FromLabel    string
	ToLabel      string
	SegmentRole  SegmentRole
	Sensitive    bool
}

// Response is one submitted response row. Rows are immutable inputs; the
// engine never mutates them.
type Response struct {
	Answers    map[string]interface{}
	Respondent map[string]interface{}
	CreatedAt  time.Time
}

var questionNamePattern = regexp.MustCompile(`^q(\d+)$`)

// NormalizeFields fills in the derived attributes of a raw field schema:
// display question codes, default scale endpoint labels, trimmed criterion
// and a default segment role. The input slice is not modified.
func NormalizeFields(fields []Field) []Field {
	normalized := make([]Field, len(fields))
	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		f.Criterion = strings.TrimSpace(f.Criterion)
		if m := questionNamePattern.FindStringSubmatch(f.Name); m != nil {
			f.QuestionCode = "Q" + m[1]
		} else {
			f.QuestionCode = fmt.Sprintf("Q%d", i+1)
		}
		if f.Type == FieldScale {
			if strings.TrimSpace(f.FromLabel) == "" {
				f.FromLabel = DefaultFromLabel
			}
			if strings.TrimSpace(f.ToLabel) == "" {
				f.ToLabel = DefaultToLabel
			}
		}
		if f.SegmentRole == "" {
			f.SegmentRole = SegmentRoleAuto
		}
		normalized[i] = f
	}
	return normalized
}

// HasScaleField reports whether the schema contains at least one scale
// question, which is what makes row-level scale averages meaningful.
func HasScaleField(fields []Field) bool {
	for _, f := range fields {
		if f.Type == FieldScale {
			return true
		}
	}
	return false
}
