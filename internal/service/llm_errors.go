package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"studyhub/internal/domain"
)

// ClassifyLLMError maps the last provider failure onto the generation error taxonomy.
// Providers expose failures only through message text, so the match is on lowercase substrings.
func ClassifyLLMError(lastErr error) *domain.DomainError {
	if lastErr == nil {
		return domain.NewError(domain.CodeAllModelsExhausted,
			"All models failed to generate questions", domain.ErrAllModelsExhausted)
	}

	msg := strings.ToLower(lastErr.Error())
	switch {
	case errors.Is(lastErr, context.DeadlineExceeded),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "timed out"),
		strings.Contains(msg, "deadline exceeded"):
		return exhausted(domain.CodeLLMTimeout, "Question generation timed out. Please try again.", domain.ErrLLMTimeout, lastErr)
	case strings.Contains(msg, "rate_limit"),
		strings.Contains(msg, "rate limit"),
		hasStatus(msg, 429),
		strings.Contains(msg, "too many requests"):
		return exhausted(domain.CodeRateLimited, "Rate limit exceeded. Please try again later.", domain.ErrRateLimited, lastErr)
	case strings.Contains(msg, "insufficient_quota"),
		strings.Contains(msg, "quota"),
		hasStatus(msg, 503),
		strings.Contains(msg, "service unavailable"):
		return exhausted(domain.CodeQuotaExceeded, "AI service is temporarily unavailable. Please try again later.", domain.ErrQuotaExceeded, lastErr)
	}
	return domain.NewError(domain.CodeAllModelsExhausted, "All models failed to generate questions",
		fmt.Errorf("%w: %w", domain.ErrAllModelsExhausted, lastErr))
}

func exhausted(code domain.ErrorCode, message string, kind, lastErr error) *domain.DomainError {
	return domain.NewError(code, message, fmt.Errorf("%w: %w: %w", domain.ErrAllModelsExhausted, kind, lastErr))
}

// hasStatus matches the HTTP status phrasings the openai and ollama clients put in their errors.
func hasStatus(msg string, code int) bool {
	c := strconv.Itoa(code)
	return strings.Contains(msg, "status code: "+c) ||
		strings.Contains(msg, "status code "+c) ||
		strings.Contains(msg, "status: "+c) ||
		strings.Contains(msg, "status "+c)
}
