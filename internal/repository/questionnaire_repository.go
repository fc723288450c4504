package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"formpulse/internal/domain"
	"formpulse/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// QuestionnaireRepository defines the data operations for questionnaires,
// their field schemas and their response rows. Every query is tenant-scoped;
// the analytics engine downstream performs no authorization of its own.
type QuestionnaireRepository interface {
	GetQuestionnaire(ctx context.Context, tenantID, id string) (*models.Questionnaire, error)
	ListQuestionnaires(ctx context.Context, tenantID string) ([]models.Questionnaire, error)
	GetFields(ctx context.Context, questionnaireID string, version int) ([]models.QuestionnaireField, error)
	GetResponses(ctx context.Context, tenantID, questionnaireID string, version int, filter domain.ResponseFilter) ([]models.ResponseRow, error)
	SaveResponse(ctx context.Context, row *models.ResponseRow) error
}

// sqlxQuestionnaireRepository implements QuestionnaireRepository using sqlx.
type sqlxQuestionnaireRepository struct {
	db *sqlx.DB
}

// NewSQLXQuestionnaireRepository creates a new instance of sqlxQuestionnaireRepository.
func NewSQLXQuestionnaireRepository(db *sqlx.DB) QuestionnaireRepository {
	return &sqlxQuestionnaireRepository{db: db}
}

func (r *sqlxQuestionnaireRepository) GetQuestionnaire(ctx context.Context, tenantID, id string) (*models.Questionnaire, error) {
	var q models.Questionnaire
	query := `SELECT * FROM questionnaires WHERE id = :id AND tenant_id = :tenant_id AND deleted_at IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetQuestionnaire: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"id": id, "tenant_id": tenantID}
	if err := stmt.GetContext(ctx, &q, args); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}
	return &q, nil
}

func (r *sqlxQuestionnaireRepository) ListQuestionnaires(ctx context.Context, tenantID string) ([]models.Questionnaire, error) {
	var qs []models.Questionnaire
	query := `SELECT * FROM questionnaires WHERE tenant_id = :tenant_id AND deleted_at IS NULL ORDER BY created_at DESC`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for ListQuestionnaires: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"tenant_id": tenantID}
	if err := stmt.SelectContext(ctx, &qs, args); err != nil {
		return nil, fmt.Errorf("failed to list questionnaires: %w", err)
	}
	return qs, nil
}

func (r *sqlxQuestionnaireRepository) GetFields(ctx context.Context, questionnaireID string, version int) ([]models.QuestionnaireField, error) {
	var fields []models.QuestionnaireField
	query := `SELECT * FROM questionnaire_fields
	          WHERE questionnaire_id = :questionnaire_id AND version = :version
	          ORDER BY position ASC`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetFields: %w", err)
	}
	defer stmt.Close()

	args := map[string]interface{}{"questionnaire_id": questionnaireID, "version": version}
	if err := stmt.SelectContext(ctx, &fields, args); err != nil {
		return nil, fmt.Errorf("failed to get questionnaire fields: %w", err)
	}
	return fields, nil
}

// GetResponses loads response rows ordered oldest first. The caller bounds
// the read through filter.Limit; aggregation never runs over an unbounded
// result set.
func (r *sqlxQuestionnaireRepository) GetResponses(ctx context.Context, tenantID, questionnaireID string, version int, filter domain.ResponseFilter) ([]models.ResponseRow, error) {
	query := `SELECT * FROM responses
	          WHERE tenant_id = :tenant_id
	            AND questionnaire_id = :questionnaire_id
	            AND version = :version`
	args := map[string]interface{}{
		"tenant_id":        tenantID,
		"questionnaire_id": questionnaireID,
		"version":          version,
	}
	if filter.From != nil {
		query += ` AND created_at >= :from_date`
		args["from_date"] = *filter.From
	}
	if filter.To != nil {
		query += ` AND created_at <= :to_date`
		args["to_date"] = *filter.To
	}
	if filter.RespondentSearch != "" {
		query += ` AND LOWER(respondent) LIKE :respondent_search ESCAPE '\'`
		args["respondent_search"] = "%" + sqlxLowerLike(filter.RespondentSearch) + "%"
	}
	query += ` ORDER BY created_at ASC`
	if filter.Limit > 0 {
		query += ` FETCH FIRST :row_limit ROWS ONLY`
		args["row_limit"] = filter.Limit
	}

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetResponses: %w", err)
	}
	defer stmt.Close()

	var rows []models.ResponseRow
	if err := stmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	return rows, nil
}

func (r *sqlxQuestionnaireRepository) SaveResponse(ctx context.Context, row *models.ResponseRow) error {
	if row == nil {
		return fmt.Errorf("response row cannot be nil")
	}
	query := `INSERT INTO responses (id, tenant_id, questionnaire_id, version, answers, respondent, created_at)
	          VALUES (:id, :tenant_id, :questionnaire_id, :version, :answers, :respondent, :created_at)`

	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}
