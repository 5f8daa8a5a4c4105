package domain

import (
	"context"
	"time"
)

// GenerationRecord is the persisted audit entry of one successful generation call.
type GenerationRecord struct {
	ID            string
	RequesterID   string
	Topic         string
	Difficulty    Difficulty
	NumQuestions  int
	QuestionTypes []QuestionType
	ModelUsed     string
	CacheHit      bool
	ElapsedMs     int64
	ContentLength int
	CreatedAt     time.Time
}

// GenerationHistoryRepository stores generation records.
type GenerationHistoryRepository interface {
	Save(ctx context.Context, record *GenerationRecord) error
	ListByRequester(ctx context.Context, requesterID string, limit int) ([]*GenerationRecord, error)
}
