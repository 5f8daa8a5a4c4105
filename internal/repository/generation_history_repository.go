package repository

import (
	"context"
	"fmt"
	"time"

	"studyhub/internal/domain"
	"studyhub/internal/repository/models"
	"studyhub/internal/util"
)

const generationColumns = `ID, REQUESTER_ID, TOPIC, DIFFICULTY, NUM_QUESTIONS, QUESTION_TYPES, MODEL_USED, CACHE_HIT, ELAPSED_MS, CONTENT_LENGTH, CREATED_AT`

// sqlxGenerationHistoryRepository implements domain.GenerationHistoryRepository on Oracle.
type sqlxGenerationHistoryRepository struct {
	db DBTX
}

// NewSQLXGenerationHistoryRepository creates a new instance of sqlxGenerationHistoryRepository.
func NewSQLXGenerationHistoryRepository(db DBTX) domain.GenerationHistoryRepository {
	return &sqlxGenerationHistoryRepository{db: db}
}

func toDomainGeneration(m *models.QuizGeneration) *domain.GenerationRecord {
	if m == nil {
		return nil
	}
	types := make([]domain.QuestionType, 0, len(m.QuestionTypes))
	for _, t := range m.QuestionTypes {
		types = append(types, domain.QuestionType(t))
	}
	return &domain.GenerationRecord{
		ID:            m.ID,
		RequesterID:   m.RequesterID.String,
		Topic:         m.Topic,
		Difficulty:    domain.Difficulty(m.Difficulty),
		NumQuestions:  m.NumQuestions,
		QuestionTypes: types,
		ModelUsed:     m.ModelUsed,
		CacheHit:      util.FlagToBool(m.CacheHit),
		ElapsedMs:     m.ElapsedMs,
		ContentLength: m.ContentLength,
		CreatedAt:     m.CreatedAt,
	}
}

func fromDomainGeneration(r *domain.GenerationRecord) *models.QuizGeneration {
	if r == nil {
		return nil
	}
	types := make(models.StringSlice, 0, len(r.QuestionTypes))
	for _, t := range r.QuestionTypes {
		types = append(types, string(t))
	}
	return &models.QuizGeneration{
		ID:            r.ID,
		RequesterID:   util.StringToNullString(r.RequesterID),
		Topic:         r.Topic,
		Difficulty:    string(r.Difficulty),
		NumQuestions:  r.NumQuestions,
		QuestionTypes: types,
		ModelUsed:     r.ModelUsed,
		CacheHit:      util.BoolToFlag(r.CacheHit),
		ElapsedMs:     r.ElapsedMs,
		ContentLength: r.ContentLength,
		CreatedAt:     r.CreatedAt,
	}
}

// Save inserts one generation record.
func (r *sqlxGenerationHistoryRepository) Save(ctx context.Context, record *domain.GenerationRecord) error {
	if record == nil {
		return fmt.Errorf("generation record is nil")
	}
	m := fromDomainGeneration(record)
	if m.ID == "" {
		m.ID = util.NewULID()
		record.ID = m.ID
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	// Oracle binds the joined string, not the Valuer.
	typesVal, err := m.QuestionTypes.Value()
	if err != nil {
		return fmt.Errorf("failed to convert question types: %w", err)
	}

	query := `INSERT INTO quiz_generations (` + generationColumns + `)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11)`

	_, err = r.db.ExecContext(ctx, query,
		m.ID,
		m.RequesterID,
		m.Topic,
		m.Difficulty,
		m.NumQuestions,
		typesVal,
		m.ModelUsed,
		m.CacheHit,
		m.ElapsedMs,
		m.ContentLength,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz generation %s: %w", m.ID, err)
	}
	return nil
}

// ListByRequester returns the requester's most recent generations, newest first.
func (r *sqlxGenerationHistoryRepository) ListByRequester(ctx context.Context, requesterID string, limit int) ([]*domain.GenerationRecord, error) {
	query := `SELECT ` + generationColumns + `
	          FROM quiz_generations
	          WHERE REQUESTER_ID = :1
	          ORDER BY CREATED_AT DESC
	          FETCH FIRST :2 ROWS ONLY`

	var rows []models.QuizGeneration
	if err := r.db.SelectContext(ctx, &rows, query, requesterID, limit); err != nil {
		return nil, fmt.Errorf("failed to list quiz generations for %s: %w", requesterID, err)
	}

	records := make([]*domain.GenerationRecord, 0, len(rows))
	for i := range rows {
		records = append(records, toDomainGeneration(&rows[i]))
	}
	return records, nil
}
