package domain

import (
	"context"
	"strings"
	"time"
)

// Difficulty is the requested difficulty of a generated quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid reports whether d is one of the known difficulty levels.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionType is the answer format of a generated question.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeTrueFalse      QuestionType = "true-false"
	QuestionTypeFillInBlank    QuestionType = "fill-in-the-blank"
)

// IsValid reports whether t is one of the recognized question types.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeFillInBlank:
		return true
	}
	return false
}

// OptionLabels are the fixed option slots every question carries.
var OptionLabels = []string{"A", "B", "C", "D"}

// ModelUsedCache is reported as the model name when a result is served from cache.
const ModelUsedCache = "cache"

// GenerationRequest describes one quiz generation call.
type GenerationRequest struct {
	Topic         string
	Difficulty    Difficulty
	NumQuestions  int
	QuestionTypes []QuestionType
	Content       string // optional source material
	Language      string // optional output language
	RequesterID   string // never part of the cache key
}

// MaxQuestionsPerRequest bounds NumQuestions.
const MaxQuestionsPerRequest = 50

// HasContent reports whether source material was supplied. Whitespace-only content counts as none.
func (r *GenerationRequest) HasContent() bool {
	return strings.TrimSpace(r.Content) != ""
}

// Validate returns every problem with the request, or nil.
func (r *GenerationRequest) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(r.Topic) == "" {
		errs = append(errs, NewMissingFieldError("topic"))
	}
	if !r.Difficulty.IsValid() {
		errs = append(errs, NewInvalidFormatError("difficulty", r.Difficulty))
	}
	if r.NumQuestions < 1 || r.NumQuestions > MaxQuestionsPerRequest {
		errs = append(errs, NewOutOfRangeError("num_questions", r.NumQuestions, 1, MaxQuestionsPerRequest))
	}
	if len(r.QuestionTypes) == 0 {
		errs = append(errs, NewMissingFieldError("question_types"))
	}
	for _, t := range r.QuestionTypes {
		if !t.IsValid() {
			errs = append(errs, NewInvalidFormatError("question_types", t))
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// GeneratedQuestion is a normalized question produced by the LLM.
type GeneratedQuestion struct {
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation"`
	Type        QuestionType      `json:"type"`
	Difficulty  Difficulty        `json:"difficulty"`
}

// GenerationMetadata describes how a result was produced.
type GenerationMetadata struct {
	Elapsed       time.Duration
	ModelUsed     string
	ContentLength int // 0 when no content was supplied
	CacheHit      bool
}

// GenerationResult is returned by QuizGenerator.GenerateQuiz.
type GenerationResult struct {
	ID          string
	Questions   []GeneratedQuestion
	Metadata    GenerationMetadata
	GeneratedAt time.Time
}

// QuizGenerator generates validated quiz questions for a request.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
	ListGenerations(ctx context.Context, requesterID string, limit int) ([]*GenerationRecord, error)
}

// ModelConfig describes one model in the ordered fallback list.
type ModelConfig struct {
	Name        string
	MaxAttempts int
	Temperature float64
	MaxTokens   int
}

// CompletionRequest is a single-prompt chat completion call.
type CompletionRequest struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// LLMClient is the outbound port to the completion provider.
type LLMClient interface {
	// Complete sends prompt as a single user message and returns the text of the first choice.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
