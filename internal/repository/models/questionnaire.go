package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// JSONMap is a custom type for handling JSON object columns with sqlx.
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("JSONMap Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(bytesToParse, m)
}

// StringSlice is a custom type for handling string arrays stored as JSON.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// Questionnaire is one questionnaire owned by a tenant.
type Questionnaire struct {
	ID             string         `db:"ID"`
	TenantID       string         `db:"TENANT_ID"`
	Title          string         `db:"TITLE"`
	Description    sql.NullString `db:"DESCRIPTION"`
	CurrentVersion int            `db:"CURRENT_VERSION"`
	CreatedAt      time.Time      `db:"CREATED_AT"`
	UpdatedAt      time.Time      `db:"UPDATED_AT"`
	DeletedAt      sql.NullTime   `db:"DELETED_AT"`
}

// QuestionnaireField is one question within a questionnaire version.
type QuestionnaireField struct {
	ID              string         `db:"ID"`
	QuestionnaireID string         `db:"QUESTIONNAIRE_ID"`
	Version         int            `db:"VERSION"`
	Name            string         `db:"NAME"`
	FieldType       string         `db:"FIELD_TYPE"`
	Label           string         `db:"LABEL"`
	Criterion       sql.NullString `db:"CRITERION"`
	Options         StringSlice    `db:"OPTIONS"`
	FromLabel       sql.NullString `db:"FROM_LABEL"`
	ToLabel         sql.NullString `db:"TO_LABEL"`
	SegmentRole     sql.NullString `db:"SEGMENT_ROLE"`
	IsSensitive     bool           `db:"IS_SENSITIVE"`
	Position        int            `db:"POSITION"`
	CreatedAt       time.Time      `db:"CREATED_AT"`
	UpdatedAt       time.Time      `db:"UPDATED_AT"`
}

// ResponseRow is one submitted response. Answers and Respondent are stored
// as JSON columns keyed by field name and attribute key respectively.
type ResponseRow struct {
	ID              string    `db:"ID"`
	TenantID        string    `db:"TENANT_ID"`
	QuestionnaireID string    `db:"QUESTIONNAIRE_ID"`
	Version         int       `db:"VERSION"`
	Answers         JSONMap   `db:"ANSWERS"`
	Respondent      JSONMap   `db:"RESPONDENT"`
	CreatedAt       time.Time `db:"CREATED_AT"`
}
