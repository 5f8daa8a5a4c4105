package dto

import "time"

// GenerateQuizRequest is the body of POST /api/quizzes/generate
// @Description Request body for generating quiz questions
type GenerateQuizRequest struct {
	Topic         string   `json:"topic" validate:"required,max=500" example:"Photosynthesis"`
	Difficulty    string   `json:"difficulty" validate:"required,oneof=easy medium hard" example:"easy"`
	NumQuestions  int      `json:"num_questions" validate:"required,min=1,max=50" example:"3"`
	QuestionTypes []string `json:"question_types" validate:"required,min=1,dive,oneof=multiple-choice true-false fill-in-the-blank" example:"multiple-choice"`
	Content       string   `json:"content,omitempty" validate:"max=200000"`
	Language      string   `json:"language,omitempty" validate:"max=50" example:"English"`
	RequesterID   string   `json:"requester_id,omitempty" validate:"max=128"`
}

// GeneratedQuestionResponse is one validated question.
type GeneratedQuestionResponse struct {
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation"`
	Type        string            `json:"type"`
	Difficulty  string            `json:"difficulty"`
}

// GenerationMetadataResponse describes how the questions were produced.
type GenerationMetadataResponse struct {
	ElapsedMs     int64  `json:"elapsed_ms"`
	ModelUsed     string `json:"model_used"`
	ContentLength int    `json:"content_length,omitempty"`
	CacheHit      bool   `json:"cache_hit"`
}

// GenerateQuizResponse is returned by POST /api/quizzes/generate
// @Description Generated quiz questions and generation metadata
type GenerateQuizResponse struct {
	ID          string                      `json:"id"`
	Questions   []GeneratedQuestionResponse `json:"questions"`
	Metadata    GenerationMetadataResponse  `json:"metadata"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// GenerationHistoryItem is one entry of a requester's generation history.
type GenerationHistoryItem struct {
	ID            string    `json:"id"`
	Topic         string    `json:"topic"`
	Difficulty    string    `json:"difficulty"`
	NumQuestions  int       `json:"num_questions"`
	QuestionTypes []string  `json:"question_types"`
	ModelUsed     string    `json:"model_used"`
	CacheHit      bool      `json:"cache_hit"`
	ElapsedMs     int64     `json:"elapsed_ms"`
	ContentLength int       `json:"content_length"`
	CreatedAt     time.Time `json:"created_at"`
}

// GenerationHistoryResponse is returned by GET /api/quizzes/generations
type GenerationHistoryResponse struct {
	RequesterID string                  `json:"requester_id"`
	Generations []GenerationHistoryItem `json:"generations"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}
