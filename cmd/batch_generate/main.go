package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"studyhub/internal/adapter"
	"studyhub/internal/adapter/llm"
	"studyhub/internal/cache"
	"studyhub/internal/config"
	"studyhub/internal/domain"
	"studyhub/internal/logger"
	"studyhub/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer func() {
		_ = logger.Sync()
	}()

	l.Info("Batch generation starting up", zap.String("file", cfg.Batch.File))

	entries, err := config.LoadBatchRequests(cfg.Batch.File)
	if err != nil {
		l.Fatal("Failed to load batch requests", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warming an in-process memory cache would be discarded on exit.
	if cfg.Cache.Backend != "redis" {
		l.Fatal("Batch generation needs cache.backend=redis", zap.String("backend", cfg.Cache.Backend))
	}
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		l.Fatal("Failed to initialize Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	llmClient, err := llm.NewFromConfig(cfg.LLM, l)
	if err != nil {
		l.Fatal("Failed to initialize LLM client", zap.Error(err))
	}

	models := make([]domain.ModelConfig, 0, len(cfg.LLM.Models))
	for _, m := range cfg.LLM.Models {
		models = append(models, domain.ModelConfig{Name: m.Name, MaxAttempts: m.MaxAttempts, Temperature: m.Temperature, MaxTokens: m.MaxTokens})
	}

	generator := service.NewQuizGenerationService(llmClient, adapter.NewRedisCacheAdapter(redisClient), models,
		service.WithCacheTTL(cfg.Generation.CacheTTL),
		service.WithBackoffBase(cfg.Generation.BackoffBase),
		service.WithLogger(l),
	)

	requests := make([]*domain.GenerationRequest, 0, len(entries))
	for i, e := range entries {
		req := toGenerationRequest(e)
		if err := req.Validate(); err != nil {
			l.Fatal("Invalid batch request", zap.Int("index", i), zap.Error(err))
		}
		requests = append(requests, req)
	}

	summary, err := service.NewBatchService(generator, cfg.Batch.Concurrency, l).Run(ctx, requests)
	if err != nil {
		l.Error("Batch generation interrupted", zap.Error(err))
	}
	fmt.Printf("generated=%d cache_hits=%d failed=%d\n", summary.Generated, summary.CacheHits, summary.Failed)
	if summary.Failed > 0 || err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
}

func toGenerationRequest(e config.BatchRequest) *domain.GenerationRequest {
	types := make([]domain.QuestionType, 0, len(e.QuestionTypes))
	for _, t := range e.QuestionTypes {
		types = append(types, domain.QuestionType(t))
	}
	return &domain.GenerationRequest{
		Topic:         e.Topic,
		Difficulty:    domain.Difficulty(e.Difficulty),
		NumQuestions:  e.NumQuestions,
		QuestionTypes: types,
		Content:       e.Content,
		Language:      e.Language,
	}
}
