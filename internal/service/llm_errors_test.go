package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"studyhub/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLLMError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode domain.ErrorCode
		wantKind error
	}{
		{name: "deadline", err: fmt.Errorf("LLM call to gpt-4o failed: %w", context.DeadlineExceeded), wantCode: domain.CodeLLMTimeout, wantKind: domain.ErrLLMTimeout},
		{name: "timeout text", err: errors.New("Client.Timeout exceeded while awaiting headers"), wantCode: domain.CodeLLMTimeout, wantKind: domain.ErrLLMTimeout},
		{name: "rate limit code", err: errors.New("API returned unexpected status code: 429: rate_limit_exceeded"), wantCode: domain.CodeRateLimited, wantKind: domain.ErrRateLimited},
		{name: "quota", err: errors.New("insufficient_quota: You exceeded your current quota"), wantCode: domain.CodeQuotaExceeded, wantKind: domain.ErrQuotaExceeded},
		{name: "unavailable", err: errors.New("503 Service Unavailable"), wantCode: domain.CodeQuotaExceeded, wantKind: domain.ErrQuotaExceeded},
		{name: "too many requests", err: errors.New("429 Too Many Requests"), wantCode: domain.CodeRateLimited, wantKind: domain.ErrRateLimited},
		{name: "ollama status", err: errors.New("ollama: status code 503: model is loading"), wantCode: domain.CodeQuotaExceeded, wantKind: domain.ErrQuotaExceeded},
		{name: "digits in request id", err: errors.New("request req_84291 failed: connection reset by peer"), wantCode: domain.CodeAllModelsExhausted},
		{name: "digits in address", err: errors.New("dial tcp 10.0.0.7:5039: connection refused"), wantCode: domain.CodeAllModelsExhausted},
		{name: "digits in token count", err: errors.New("prompt of 4290 tokens exceeds context window"), wantCode: domain.CodeAllModelsExhausted},
		{name: "generic", err: errors.New("connection refused"), wantCode: domain.CodeAllModelsExhausted},
		{name: "empty response", err: domain.ErrEmptyModelResponse, wantCode: domain.CodeAllModelsExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLLMError(tt.err)

			assert.Equal(t, tt.wantCode, got.Code)
			assert.ErrorIs(t, got, domain.ErrAllModelsExhausted)
			assert.ErrorIs(t, got, tt.err)
			if tt.wantKind != nil {
				assert.ErrorIs(t, got, tt.wantKind)
			}
		})
	}
}

func TestClassifyLLMError_Nil(t *testing.T) {
	got := ClassifyLLMError(nil)
	assert.Equal(t, domain.CodeAllModelsExhausted, got.Code)
	assert.ErrorIs(t, got, domain.ErrAllModelsExhausted)
}
