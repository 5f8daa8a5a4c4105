package service

import (
	"context"
	"sync"
	"time"

	"studyhub/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds parallel generations in a batch run.
const DefaultBatchConcurrency = 2

// BatchItemResult is the outcome of one request of a batch run.
type BatchItemResult struct {
	Request  *domain.GenerationRequest
	Result   *domain.GenerationResult
	Err      error
	Duration time.Duration
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Items     []BatchItemResult // same order as the input
	Generated int
	CacheHits int
	Failed    int
}

// BatchService pre-generates quizzes for a list of requests, warming the shared cache.
// A failing request is logged and recorded; it never stops the rest of the batch.
type BatchService struct {
	generator   domain.QuizGenerator
	concurrency int
	logger      *zap.Logger
}

// NewBatchService creates a new BatchService. A non-positive concurrency uses DefaultBatchConcurrency.
func NewBatchService(generator domain.QuizGenerator, concurrency int, logger *zap.Logger) *BatchService {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{generator: generator, concurrency: concurrency, logger: logger}
}

// Run generates every request. It returns an error only when ctx ends before the batch finishes.
func (s *BatchService) Run(ctx context.Context, requests []*domain.GenerationRequest) (*BatchSummary, error) {
	s.logger.Info("Starting batch quiz generation",
		zap.Int("requests", len(requests)),
		zap.Int("concurrency", s.concurrency))

	summary := &BatchSummary{Items: make([]BatchItemResult, len(requests))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range requests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			result, err := s.generator.GenerateQuiz(gctx, req)
			item := BatchItemResult{Request: req, Result: result, Err: err, Duration: time.Since(start)}

			mu.Lock()
			summary.Items[i] = item
			switch {
			case err != nil:
				summary.Failed++
			case result.Metadata.CacheHit:
				summary.CacheHits++
			default:
				summary.Generated++
			}
			mu.Unlock()

			if err != nil {
				s.logger.Error("Batch item failed",
					zap.Int("index", i),
					zap.String("topic", req.Topic),
					zap.String("code", string(domain.ErrorCodeOf(err))),
					zap.Error(err))
				return nil
			}
			s.logger.Info("Batch item done",
				zap.Int("index", i),
				zap.String("topic", req.Topic),
				zap.String("model", result.Metadata.ModelUsed),
				zap.Bool("cache_hit", result.Metadata.CacheHit),
				zap.Duration("duration", item.Duration))
			return nil
		})
	}

	err := g.Wait()
	s.logger.Info("Batch quiz generation finished",
		zap.Int("generated", summary.Generated),
		zap.Int("cache_hits", summary.CacheHits),
		zap.Int("failed", summary.Failed))
	if err == nil {
		err = ctx.Err()
	}
	return summary, err
}
