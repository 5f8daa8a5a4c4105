package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"studyhub/internal/config"
	"studyhub/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// LangchainClient implements domain.LLMClient on top of a langchaingo model.
// The model name is chosen per call, so one client serves the whole fallback list.
type LangchainClient struct {
	model   llms.Model
	timeout time.Duration
	logger  *zap.Logger
}

// NewLangchainClient wraps an already constructed langchaingo model.
func NewLangchainClient(model llms.Model, timeout time.Duration, logger *zap.Logger) *LangchainClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LangchainClient{
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// NewFromConfig builds the provider selected by cfg.Provider.
func NewFromConfig(cfg config.LLMConfig, logger *zap.Logger) (*LangchainClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("at least one model must be configured")
	}
	defaultModel := cfg.Models[0].Name
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var (
		model llms.Model
		err   error
	)
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key cannot be empty")
		}
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(defaultModel),
			openai.WithHTTPClient(httpClient),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case "ollama":
		model, err = ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(defaultModel),
			ollama.WithHTTPClient(httpClient),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s LLM client: %w", cfg.Provider, err)
	}

	logger.Info("LLM client initialized",
		zap.String("provider", cfg.Provider),
		zap.String("default_model", defaultModel),
		zap.Duration("timeout", cfg.Timeout))
	return NewLangchainClient(model, cfg.Timeout, logger), nil
}

// Complete implements domain.LLMClient.
func (c *LangchainClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	opts := []llms.CallOption{
		llms.WithModel(req.Model),
		llms.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("LLM request timed out", zap.String("model", req.Model), zap.Duration("after", time.Since(start)))
		}
		return "", fmt.Errorf("LLM call to %s failed: %w", req.Model, err)
	}

	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", domain.ErrEmptyModelResponse
	}

	c.logger.Debug("LLM response received",
		zap.String("model", req.Model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("response_length", len(resp.Choices[0].Content)))
	return resp.Choices[0].Content, nil
}

var _ domain.LLMClient = (*LangchainClient)(nil)
