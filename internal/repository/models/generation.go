package models

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// stringDelimiter separates StringSlice elements in a VARCHAR2 column.
const stringDelimiter = ","

// StringSlice stores a list of short tokens as one delimited string column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	return strings.Join(s, stringDelimiter), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = StringSlice{}
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("StringSlice Scan: unsupported type %T", value)
	}

	if raw == "" {
		*s = StringSlice{}
		return nil
	}
	*s = strings.Split(raw, stringDelimiter)
	return nil
}

// QuizGeneration maps a row of QUIZ_GENERATIONS.
type QuizGeneration struct {
	ID            string         `db:"ID"`             // ULID
	RequesterID   sql.NullString `db:"REQUESTER_ID"`   // anonymous callers are NULL
	Topic         string         `db:"TOPIC"`          // free text subject
	Difficulty    string         `db:"DIFFICULTY"`     // easy, medium or hard
	NumQuestions  int            `db:"NUM_QUESTIONS"`  // requested count
	QuestionTypes StringSlice    `db:"QUESTION_TYPES"` // comma separated
	ModelUsed     string         `db:"MODEL_USED"`     // "cache" on a cache hit
	CacheHit      int            `db:"CACHE_HIT"`      // 0 or 1
	ElapsedMs     int64          `db:"ELAPSED_MS"`     // wall time of the call
	ContentLength int            `db:"CONTENT_LENGTH"` // characters of supplied source material
	CreatedAt     time.Time      `db:"CREATED_AT"`     // generation time
}
