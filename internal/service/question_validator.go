package service

import (
	"strings"

	"studyhub/internal/domain"
)

// ValidateQuestions checks every generated question and stops at the first invalid one.
// The returned error is a *domain.QuestionValidationError naming the 1-based index and field.
// The input is returned unchanged on success.
func ValidateQuestions(questions []domain.GeneratedQuestion) ([]domain.GeneratedQuestion, error) {
	for i, q := range questions {
		switch {
		case strings.TrimSpace(q.Question) == "":
			return nil, &domain.QuestionValidationError{Index: i + 1, Field: "question"}
		case !q.Type.IsValid():
			return nil, &domain.QuestionValidationError{Index: i + 1, Field: "type"}
		case strings.TrimSpace(q.Answer) == "":
			return nil, &domain.QuestionValidationError{Index: i + 1, Field: "answer"}
		}
	}
	return questions, nil
}
