package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"formpulse/cmd/seed/internal/seedmodels"
	"formpulse/internal/config"
	"formpulse/internal/database"
	"formpulse/internal/logger"
	"formpulse/internal/repository/models"
	"formpulse/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const seedFilePath = "configs/seed_data/demo_questionnaire.json"

// Fixed seed keeps the generated demo data reproducible across runs.
const randSeed = 42

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting demo data seeding process...")
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	byteValue, err := os.ReadFile(seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", seedFilePath), zap.Error(err))
	}

	var seed seedmodels.SeedQuestionnaire
	if err := json.Unmarshal(byteValue, &seed); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}

	if err := seedDemoData(ctx, db, log, seed); err != nil {
		log.Fatal("Seeding failed, transaction rolled back", zap.Error(err))
	}
	log.Info("Demo data seeding process completed.")
}

func seedDemoData(ctx context.Context, db *sqlx.DB, log *zap.Logger, seed seedmodels.SeedQuestionnaire) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = cErr
			}
		}
	}()

	now := time.Now()
	tenantID := util.NewULID()
	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO tenants (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`,
		map[string]interface{}{"id": tenantID, "name": seed.TenantName, "created_at": now, "updated_at": now},
	); err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	log.Info("Created tenant", zap.String("id", tenantID), zap.String("name", seed.TenantName))

	questionnaireID := util.NewULID()
	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO questionnaires (id, tenant_id, title, description, current_version, created_at, updated_at)
		 VALUES (:id, :tenant_id, :title, :description, 1, :created_at, :updated_at)`,
		map[string]interface{}{
			"id": questionnaireID, "tenant_id": tenantID,
			"title": seed.Title, "description": seed.Description,
			"created_at": now, "updated_at": now,
		},
	); err != nil {
		return fmt.Errorf("failed to insert questionnaire: %w", err)
	}
	log.Info("Created questionnaire", zap.String("id", questionnaireID), zap.String("title", seed.Title))

	for i, f := range seed.Fields {
		field := models.QuestionnaireField{
			ID:              util.NewULID(),
			QuestionnaireID: questionnaireID,
			Version:         1,
			Name:            f.Name,
			FieldType:       f.FieldType,
			Label:           f.Label,
			Criterion:       util.StringToNullString(f.Criterion),
			Options:         models.StringSlice(f.Options),
			FromLabel:       util.StringToNullString(f.FromLabel),
			ToLabel:         util.StringToNullString(f.ToLabel),
			SegmentRole:     util.StringToNullString(f.SegmentRole),
			IsSensitive:     f.IsSensitive,
			Position:        i + 1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err = tx.NamedExecContext(ctx,
			`INSERT INTO questionnaire_fields
			   (id, questionnaire_id, version, name, field_type, label, criterion, options,
			    from_label, to_label, segment_role, is_sensitive, position, created_at, updated_at)
			 VALUES
			   (:id, :questionnaire_id, :version, :name, :field_type, :label, :criterion, :options,
			    :from_label, :to_label, :segment_role, :is_sensitive, :position, :created_at, :updated_at)`,
			field,
		); err != nil {
			return fmt.Errorf("failed to insert field %s: %w", f.Name, err)
		}
	}
	log.Info("Created questionnaire fields", zap.Int("count", len(seed.Fields)))

	rng := rand.New(rand.NewSource(randSeed))
	count := seed.ResponseCount
	if count <= 0 {
		count = 100
	}
	for i := 0; i < count; i++ {
		row := models.ResponseRow{
			ID:              util.NewULID(),
			TenantID:        tenantID,
			QuestionnaireID: questionnaireID,
			Version:         1,
			Answers:         generateAnswers(rng, seed),
			Respondent:      generateRespondent(rng, seed),
			CreatedAt:       now.AddDate(0, 0, -rng.Intn(60)),
		}
		if _, err = tx.NamedExecContext(ctx,
			`INSERT INTO responses (id, tenant_id, questionnaire_id, version, answers, respondent, created_at)
			 VALUES (:id, :tenant_id, :questionnaire_id, :version, :answers, :respondent, :created_at)`,
			row,
		); err != nil {
			return fmt.Errorf("failed to insert response %d: %w", i, err)
		}
	}
	log.Info("Created demo responses", zap.Int("count", count))

	return nil
}

func generateAnswers(rng *rand.Rand, seed seedmodels.SeedQuestionnaire) models.JSONMap {
	answers := models.JSONMap{}
	for _, f := range seed.Fields {
		// Roughly one in twelve answers is skipped so the demo data shows
		// uneven per-question totals.
		if rng.Intn(12) == 0 {
			continue
		}
		switch f.FieldType {
		case "scale":
			// Skew towards the upper half of the scale.
			answers[f.Name] = 1 + rng.Intn(3) + rng.Intn(3)
		case "radio":
			if len(f.Options) > 0 {
				answers[f.Name] = f.Options[rng.Intn(len(f.Options))]
			}
		case "checkbox":
			if len(f.Options) > 0 {
				picked := make([]string, 0, len(f.Options))
				for _, opt := range f.Options {
					if rng.Intn(2) == 0 {
						picked = append(picked, opt)
					}
				}
				if len(picked) > 0 {
					answers[f.Name] = picked
				}
			}
		case "text":
			if len(seed.TextSamples) > 0 {
				answers[f.Name] = seed.TextSamples[rng.Intn(len(seed.TextSamples))]
			}
		}
	}
	return answers
}

func generateRespondent(rng *rand.Rand, seed seedmodels.SeedQuestionnaire) models.JSONMap {
	respondent := models.JSONMap{}
	for _, attr := range seed.RespondentAttributes {
		if len(attr.Values) == 0 {
			continue
		}
		respondent[attr.Key] = attr.Values[rng.Intn(len(attr.Values))]
	}
	return respondent
}
