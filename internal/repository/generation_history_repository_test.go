package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"studyhub/internal/domain"
	"studyhub/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupGenerationTestDB creates a new sqlx.DB instance and sqlmock for repository testing.
func setupGenerationTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestToDomainGeneration(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := &models.QuizGeneration{
		ID:            "01HXGEN",
		RequesterID:   sql.NullString{String: "user-1", Valid: true},
		Topic:         "Photosynthesis",
		Difficulty:    "easy",
		NumQuestions:  3,
		QuestionTypes: models.StringSlice{"multiple-choice", "true-false"},
		ModelUsed:     "gpt-4o",
		CacheHit:      1,
		ElapsedMs:     1250,
		CreatedAt:     now,
	}

	rec := toDomainGeneration(m)
	require.NotNil(t, rec)
	assert.Equal(t, "user-1", rec.RequesterID)
	assert.Equal(t, domain.DifficultyEasy, rec.Difficulty)
	assert.Equal(t, []domain.QuestionType{domain.QuestionTypeMultipleChoice, domain.QuestionTypeTrueFalse}, rec.QuestionTypes)
	assert.True(t, rec.CacheHit)
	assert.Equal(t, now, rec.CreatedAt)

	m.RequesterID.Valid = false
	m.RequesterID.String = ""
	m.CacheHit = 0
	rec = toDomainGeneration(m)
	assert.Equal(t, "", rec.RequesterID)
	assert.False(t, rec.CacheHit)

	assert.Nil(t, toDomainGeneration(nil))
}

func TestFromDomainGeneration(t *testing.T) {
	rec := &domain.GenerationRecord{
		ID:            "01HXGEN",
		Topic:         "Cells",
		Difficulty:    domain.DifficultyHard,
		QuestionTypes: []domain.QuestionType{domain.QuestionTypeFillInBlank},
		CacheHit:      true,
	}

	m := fromDomainGeneration(rec)
	assert.False(t, m.RequesterID.Valid)
	assert.Equal(t, "hard", m.Difficulty)
	assert.Equal(t, models.StringSlice{"fill-in-the-blank"}, m.QuestionTypes)
	assert.Equal(t, 1, m.CacheHit)

	assert.Nil(t, fromDomainGeneration(nil))
}

func TestGenerationHistoryRepository_Save(t *testing.T) {
	db, mock := setupGenerationTestDB(t)
	repo := NewSQLXGenerationHistoryRepository(db)

	createdAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := &domain.GenerationRecord{
		ID:            "01HXGEN",
		RequesterID:   "user-1",
		Topic:         "Photosynthesis",
		Difficulty:    domain.DifficultyEasy,
		NumQuestions:  3,
		QuestionTypes: []domain.QuestionType{domain.QuestionTypeMultipleChoice, domain.QuestionTypeTrueFalse},
		ModelUsed:     "gpt-4o",
		ElapsedMs:     900,
		CreatedAt:     createdAt,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quiz_generations (`+generationColumns+`)`)).
		WithArgs("01HXGEN", "user-1", "Photosynthesis", "easy", 3, "multiple-choice,true-false", "gpt-4o", 0, int64(900), 0, createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), rec)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationHistoryRepository_SaveAssignsID(t *testing.T) {
	db, mock := setupGenerationTestDB(t)
	repo := NewSQLXGenerationHistoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quiz_generations`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &domain.GenerationRecord{Topic: "Cells", Difficulty: domain.DifficultyMedium}
	require.NoError(t, repo.Save(context.Background(), rec))
	assert.Len(t, rec.ID, 26)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationHistoryRepository_SaveError(t *testing.T) {
	db, mock := setupGenerationTestDB(t)
	repo := NewSQLXGenerationHistoryRepository(db)

	dbErr := errors.New("ORA-00942: table or view does not exist")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quiz_generations`)).WillReturnError(dbErr)

	err := repo.Save(context.Background(), &domain.GenerationRecord{ID: "01HXGEN"})
	assert.ErrorIs(t, err, dbErr)
	assert.Error(t, repo.Save(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationHistoryRepository_ListByRequester(t *testing.T) {
	db, mock := setupGenerationTestDB(t)
	repo := NewSQLXGenerationHistoryRepository(db)

	newer := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)
	rows := sqlmock.NewRows([]string{"ID", "REQUESTER_ID", "TOPIC", "DIFFICULTY", "NUM_QUESTIONS", "QUESTION_TYPES", "MODEL_USED", "CACHE_HIT", "ELAPSED_MS", "CONTENT_LENGTH", "CREATED_AT"}).
		AddRow("01HXB", "user-1", "Cells", "hard", 5, "fill-in-the-blank", "cache", 1, 3, 0, newer).
		AddRow("01HXA", "user-1", "Photosynthesis", "easy", 3, "multiple-choice,true-false", "gpt-4o", 0, 1800, 420, older)

	mock.ExpectQuery(`SELECT .+ FROM quiz_generations\s+WHERE REQUESTER_ID = :1\s+ORDER BY CREATED_AT DESC\s+FETCH FIRST :2 ROWS ONLY`).
		WithArgs("user-1", 10).
		WillReturnRows(rows)

	records, err := repo.ListByRequester(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "01HXB", records[0].ID)
	assert.True(t, records[0].CacheHit)
	assert.Equal(t, domain.ModelUsedCache, records[0].ModelUsed)
	assert.Equal(t, []domain.QuestionType{domain.QuestionTypeMultipleChoice, domain.QuestionTypeTrueFalse}, records[1].QuestionTypes)
	assert.Equal(t, 420, records[1].ContentLength)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationHistoryRepository_ListError(t *testing.T) {
	db, mock := setupGenerationTestDB(t)
	repo := NewSQLXGenerationHistoryRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM quiz_generations`).WillReturnError(sql.ErrConnDone)

	_, err := repo.ListByRequester(context.Background(), "user-1", 10)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
