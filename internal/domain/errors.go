package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Generation specific errors
	CodeEmptyModelResponse ErrorCode = "EMPTY_MODEL_RESPONSE"
	CodeResponseParse      ErrorCode = "RESPONSE_PARSE_FAILURE"
	CodeQuestionValidation ErrorCode = "QUESTION_VALIDATION_FAILURE"
	CodeAllModelsExhausted ErrorCode = "ALL_MODELS_EXHAUSTED"
	CodeRateLimited        ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeQuotaExceeded      ErrorCode = "QUOTA_EXCEEDED"
	CodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	CodeLLMServiceError    ErrorCode = "LLM_SERVICE_ERROR"
	CodeCacheUnavailable   ErrorCode = "CACHE_UNAVAILABLE"
	CodeHistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"
)

// Sentinel errors for the generation pipeline. DomainErrors wrap them so callers can use errors.Is.
var (
	ErrEmptyModelResponse = errors.New("model returned an empty response")
	ErrResponseParse      = errors.New("failed to parse model response")
	ErrAllModelsExhausted = errors.New("all models failed to generate questions")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrQuotaExceeded      = errors.New("insufficient quota or service unavailable")
	ErrLLMTimeout         = errors.New("model request timed out")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a detail shown to API clients.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", err)
}

func NewResponseParseError(reason string, err error) *DomainError {
	cause := fmt.Errorf("%w: %s", ErrResponseParse, reason)
	if err != nil {
		cause = fmt.Errorf("%w: %s: %w", ErrResponseParse, reason, err)
	}
	return NewError(CodeResponseParse, "Failed to parse generated questions", cause)
}

// QuestionValidationError reports the first structurally invalid generated question.
type QuestionValidationError struct {
	Index int // 1-based
	Field string
}

func (e *QuestionValidationError) Error() string {
	return fmt.Sprintf("question %d: invalid or missing field %q", e.Index, e.Field)
}

func NewQuestionValidationFailure(err *QuestionValidationError) *DomainError {
	return NewError(CodeQuestionValidation, "Generated questions failed validation", err).
		WithContext("question_index", err.Index).
		WithContext("field", err.Field)
}

// ErrorCodeOf returns the code of the first DomainError in err's chain, or CodeInternal.
func ErrorCodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
