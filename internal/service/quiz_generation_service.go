package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"studyhub/internal/cache"
	"studyhub/internal/domain"
	"studyhub/internal/logger"
	"studyhub/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheTTL is how long a validated question set is served from cache.
	DefaultCacheTTL = 3600 * time.Second
	// DefaultBackoffBase is multiplied by 2^attempt between attempts of one model.
	DefaultBackoffBase = time.Second

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	cacheServiceName = "quizgen"
	cacheObjectType  = "questions"
)

// QuizGenerationService orchestrates cache lookup, prompting, model fallback, parsing and validation.
type QuizGenerationService struct {
	llm         domain.LLMClient
	cache       domain.Cache
	history     domain.GenerationHistoryRepository
	models      []domain.ModelConfig
	cacheTTL    time.Duration
	backoffBase time.Duration
	sleep       Sleeper
	now         func() time.Time
	group       singleflight.Group
	logger      *zap.Logger
}

// Option configures a QuizGenerationService.
type Option func(*QuizGenerationService)

// WithHistory records every successful generation in repo.
func WithHistory(repo domain.GenerationHistoryRepository) Option {
	return func(s *QuizGenerationService) { s.history = repo }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *QuizGenerationService) { s.cacheTTL = ttl }
}

func WithBackoffBase(base time.Duration) Option {
	return func(s *QuizGenerationService) { s.backoffBase = base }
}

func WithSleeper(sleep Sleeper) Option {
	return func(s *QuizGenerationService) { s.sleep = sleep }
}

func WithClock(now func() time.Time) Option {
	return func(s *QuizGenerationService) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *QuizGenerationService) { s.logger = l }
}

// NewQuizGenerationService creates the generation service. models is tried in order.
func NewQuizGenerationService(llm domain.LLMClient, c domain.Cache, models []domain.ModelConfig, opts ...Option) *QuizGenerationService {
	s := &QuizGenerationService{
		llm:         llm,
		cache:       c,
		models:      models,
		cacheTTL:    DefaultCacheTTL,
		backoffBase: DefaultBackoffBase,
		sleep:       SleepContext,
		now:         time.Now,
		logger:      logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// generated is what one LLM round-trip yields and what concurrent callers share.
type generated struct {
	questions []domain.GeneratedQuestion
	modelUsed string
	cacheHit  bool
}

// abandonedError marks a shared generation that stopped because the context of the
// request running it ended. Callers whose own context is still live run it again.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

// GenerateQuiz implements domain.QuizGenerator.
func (s *QuizGenerationService) GenerateQuiz(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	start := s.now()
	if req == nil {
		return nil, domain.NewInvalidInputError("generation request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, domain.NewError(domain.CodeInvalidInput, "Invalid generation request", err)
	}

	key := CacheKey(req)
	contentLength := 0
	if req.HasContent() {
		contentLength = len([]rune(req.Content))
	}

	if questions, ok := s.lookup(ctx, key); ok {
		s.logger.Info("Quiz generation served from cache",
			zap.String("cache_key", key),
			zap.String("topic", req.Topic),
			zap.Int("questions", len(questions)))
		return s.finish(ctx, req, questions, domain.ModelUsedCache, true, contentLength, start), nil
	}

	out, err := s.generateShared(ctx, req, key)
	if err != nil {
		return nil, err
	}

	// Callers that shared the round-trip get their own slice.
	questions := make([]domain.GeneratedQuestion, len(out.questions))
	copy(questions, out.questions)
	return s.finish(ctx, req, questions, out.modelUsed, out.cacheHit, contentLength, start), nil
}

// generateShared runs at most one generation per cache key at a time. The shared run uses the
// context of the request that started it; if that context ends, waiting requests retry under
// their own.
func (s *QuizGenerationService) generateShared(ctx context.Context, req *domain.GenerationRequest, key string) (*generated, error) {
	for {
		v, err, shared := s.group.Do(key, func() (interface{}, error) {
			// Another flight may have filled the entry since the caller's lookup.
			if questions, ok := s.lookup(ctx, key); ok {
				return &generated{questions: questions, modelUsed: domain.ModelUsedCache, cacheHit: true}, nil
			}
			out, err := s.generate(ctx, req, key)
			if err != nil && ctx.Err() != nil {
				return nil, &abandonedError{err: err}
			}
			return out, err
		})
		if err != nil {
			var abandoned *abandonedError
			if !errors.As(err, &abandoned) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, abandoned.err
			}
			s.logger.Info("Shared quiz generation was cancelled by its initiator, retrying",
				zap.String("cache_key", key))
			continue
		}
		if shared {
			s.logger.Debug("Quiz generation shared with a concurrent request", zap.String("cache_key", key))
		}
		return v.(*generated), nil
	}
}

// CacheKey derives the cache key from the request fields that shape the generated questions.
// RequesterID never takes part.
func CacheKey(req *domain.GenerationRequest) string {
	types := make([]string, 0, len(req.QuestionTypes))
	for _, t := range req.QuestionTypes {
		types = append(types, string(t))
	}
	content := ""
	if req.HasContent() {
		content = req.Content
	}
	params := []string{
		string(req.Difficulty),
		strconv.Itoa(req.NumQuestions),
		strings.Join(types, ","),
		cache.ContentHash(content),
	}
	if req.Language != "" {
		params = append(params, req.Language)
	}
	return cache.GenerateCacheKey(cacheServiceName, cacheObjectType, req.Topic, params...)
}

func (s *QuizGenerationService) lookup(ctx context.Context, key string) ([]domain.GeneratedQuestion, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("Cache read failed, generating fresh questions", zap.String("cache_key", key), zap.Error(err))
		}
		return nil, false
	}

	var questions []domain.GeneratedQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil || len(questions) == 0 {
		s.logger.Warn("Discarding unreadable cache entry", zap.String("cache_key", key), zap.Error(err))
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to delete unreadable cache entry", zap.String("cache_key", key), zap.Error(delErr))
		}
		return nil, false
	}
	return questions, true
}

func (s *QuizGenerationService) generate(ctx context.Context, req *domain.GenerationRequest, key string) (*generated, error) {
	content := ""
	if req.HasContent() {
		content = ProcessContent(req.Content)
	}
	prompt := BuildPrompt(req, content)

	raw, modelUsed, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseModelResponse(raw)
	if err != nil {
		s.logger.Error("Failed to parse model response",
			zap.String("model", modelUsed),
			zap.Int("response_length", len(raw)),
			zap.Error(err))
		return nil, err
	}

	questions := NormalizeQuestions(parsed, req)
	if len(questions) > req.NumQuestions {
		questions = questions[:req.NumQuestions]
	} else if len(questions) < req.NumQuestions {
		s.logger.Warn("Model returned fewer questions than requested",
			zap.String("model", modelUsed),
			zap.Int("requested", req.NumQuestions),
			zap.Int("received", len(questions)))
	}

	questions, err = ValidateQuestions(questions)
	if err != nil {
		var qerr *domain.QuestionValidationError
		if errors.As(err, &qerr) {
			return nil, domain.NewQuestionValidationFailure(qerr)
		}
		return nil, domain.NewInternalError("Failed to validate generated questions", err)
	}

	if payload, err := json.Marshal(questions); err != nil {
		s.logger.Warn("Failed to encode questions for cache", zap.Error(err))
	} else if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
		s.logger.Warn("Cache write failed", zap.String("cache_key", key), zap.Error(err))
	}

	s.logger.Info("Quiz generated",
		zap.String("model", modelUsed),
		zap.String("topic", req.Topic),
		zap.Int("questions", len(questions)))
	return &generated{questions: questions, modelUsed: modelUsed}, nil
}

// complete walks the model list, retrying each model with backoff before falling back to the next.
func (s *QuizGenerationService) complete(ctx context.Context, prompt string) (string, string, error) {
	var lastErr error
	for _, model := range s.models {
		model := model
		policy := RetryPolicy{MaxAttempts: model.MaxAttempts, BaseDelay: s.backoffBase}

		outcome := RetryWithBackoff(ctx, policy, s.sleep, func(ctx context.Context, attempt int) (string, error) {
			text, err := s.llm.Complete(ctx, domain.CompletionRequest{
				Model:       model.Name,
				Prompt:      prompt,
				Temperature: model.Temperature,
				MaxTokens:   model.MaxTokens,
			})
			if err == nil && strings.TrimSpace(text) == "" {
				err = domain.ErrEmptyModelResponse
			}
			if err != nil {
				s.logger.Warn("Model attempt failed",
					zap.String("model", model.Name),
					zap.Int("attempt", attempt),
					zap.Int("max_attempts", policy.MaxAttempts),
					zap.Error(err))
			}
			return text, err
		})
		if outcome.Succeeded() {
			return outcome.Value, model.Name, nil
		}

		lastErr = outcome.Err
		if ctx.Err() != nil {
			break
		}
		s.logger.Warn("Model exhausted its attempts",
			zap.String("model", model.Name),
			zap.Int("attempts", outcome.Attempts),
			zap.Error(lastErr))
	}

	s.logger.Error("All models failed to generate questions", zap.Error(lastErr))
	return "", "", ClassifyLLMError(lastErr)
}

func (s *QuizGenerationService) finish(ctx context.Context, req *domain.GenerationRequest, questions []domain.GeneratedQuestion,
	modelUsed string, cacheHit bool, contentLength int, start time.Time) *domain.GenerationResult {
	now := s.now()
	result := &domain.GenerationResult{
		ID:        util.NewULIDAt(now),
		Questions: questions,
		Metadata: domain.GenerationMetadata{
			Elapsed:       now.Sub(start),
			ModelUsed:     modelUsed,
			ContentLength: contentLength,
			CacheHit:      cacheHit,
		},
		GeneratedAt: now,
	}
	s.record(ctx, req, result)
	return result
}

func (s *QuizGenerationService) record(ctx context.Context, req *domain.GenerationRequest, result *domain.GenerationResult) {
	if s.history == nil {
		return
	}
	rec := &domain.GenerationRecord{
		ID:            result.ID,
		RequesterID:   req.RequesterID,
		Topic:         req.Topic,
		Difficulty:    req.Difficulty,
		NumQuestions:  req.NumQuestions,
		QuestionTypes: req.QuestionTypes,
		ModelUsed:     result.Metadata.ModelUsed,
		CacheHit:      result.Metadata.CacheHit,
		ElapsedMs:     result.Metadata.Elapsed.Milliseconds(),
		ContentLength: result.Metadata.ContentLength,
		CreatedAt:     result.GeneratedAt,
	}
	if err := s.history.Save(ctx, rec); err != nil {
		s.logger.Warn("Failed to record generation history",
			zap.String("generation_id", rec.ID),
			zap.Error(err))
	}
}

// ListGenerations implements domain.QuizGenerator.
func (s *QuizGenerationService) ListGenerations(ctx context.Context, requesterID string, limit int) ([]*domain.GenerationRecord, error) {
	if s.history == nil {
		return nil, domain.NewError(domain.CodeHistoryUnavailable, "Generation history is not enabled", nil)
	}
	if strings.TrimSpace(requesterID) == "" {
		return nil, domain.NewInvalidInputError("requester_id is required")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	records, err := s.history.ListByRequester(ctx, requesterID, limit)
	if err != nil {
		return nil, domain.NewError(domain.CodeHistoryUnavailable, "Failed to load generation history", err)
	}
	return records, nil
}

var _ domain.QuizGenerator = (*QuizGenerationService)(nil)
