package handler

import (
	"context"
	"time"

	"studyhub/internal/domain"
	"studyhub/internal/dto"
	"studyhub/internal/logger"
	"studyhub/internal/middleware"
	"studyhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizGenerationHandler handles quiz generation HTTP requests
type QuizGenerationHandler struct {
	generator domain.QuizGenerator
	cache     domain.Cache
	validator *validation.Validator
}

// NewQuizGenerationHandler creates a new QuizGenerationHandler instance
func NewQuizGenerationHandler(generator domain.QuizGenerator, cache domain.Cache) *QuizGenerationHandler {
	return &QuizGenerationHandler{
		generator: generator,
		cache:     cache,
		validator: validation.NewValidator(),
	}
}

// GenerateQuiz godoc
// @Summary Generate quiz questions
// @Description Generates validated quiz questions for a topic, optionally grounded on source content. Identical requests are served from cache.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Generation request"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Router /quizzes/generate [post]
func (h *QuizGenerationHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body must be valid JSON")
	}
	if errs := h.validator.Struct(req); len(errs) > 0 {
		return errs
	}

	result, err := h.generator.GenerateQuiz(c.UserContext(), toGenerationRequest(&req))
	if err != nil {
		logger.Get().Warn("Quiz generation failed",
			zap.String("topic", req.Topic),
			zap.String("code", string(domain.ErrorCodeOf(err))),
			zap.Error(err))
		return err
	}

	return c.JSON(toGenerateQuizResponse(result))
}

// ListGenerations godoc
// @Summary List recent generations
// @Description Returns the most recent generation records of a requester, newest first
// @Tags quiz
// @Produce json
// @Param requester_id query string true "Requester ID"
// @Param limit query int false "Maximum number of records (1-100, default 20)"
// @Success 200 {object} dto.GenerationHistoryResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /quizzes/generations [get]
func (h *QuizGenerationHandler) ListGenerations(c *fiber.Ctx) error {
	requesterID, _ := c.Locals(middleware.LocalRequesterID).(string)
	limit, _ := c.Locals(middleware.LocalLimit).(int)

	records, err := h.generator.ListGenerations(c.UserContext(), requesterID, limit)
	if err != nil {
		return err
	}

	resp := dto.GenerationHistoryResponse{
		RequesterID: requesterID,
		Generations: make([]dto.GenerationHistoryItem, 0, len(records)),
	}
	for _, r := range records {
		resp.Generations = append(resp.Generations, toHistoryItem(r))
	}
	return c.JSON(resp)
}

// Health godoc
// @Summary Health check
// @Description Reports service health and cache reachability
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *QuizGenerationHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Cache health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{Status: "degraded", Cache: "unreachable"})
	}
	return c.JSON(dto.HealthResponse{Status: "ok", Cache: "ok"})
}

func toGenerationRequest(req *dto.GenerateQuizRequest) *domain.GenerationRequest {
	types := make([]domain.QuestionType, 0, len(req.QuestionTypes))
	for _, t := range req.QuestionTypes {
		types = append(types, domain.QuestionType(t))
	}
	return &domain.GenerationRequest{
		Topic:         req.Topic,
		Difficulty:    domain.Difficulty(req.Difficulty),
		NumQuestions:  req.NumQuestions,
		QuestionTypes: types,
		Content:       req.Content,
		Language:      req.Language,
		RequesterID:   req.RequesterID,
	}
}

func toGenerateQuizResponse(result *domain.GenerationResult) dto.GenerateQuizResponse {
	questions := make([]dto.GeneratedQuestionResponse, 0, len(result.Questions))
	for _, q := range result.Questions {
		questions = append(questions, dto.GeneratedQuestionResponse{
			Question:    q.Question,
			Options:     q.Options,
			Answer:      q.Answer,
			Explanation: q.Explanation,
			Type:        string(q.Type),
			Difficulty:  string(q.Difficulty),
		})
	}
	return dto.GenerateQuizResponse{
		ID:        result.ID,
		Questions: questions,
		Metadata: dto.GenerationMetadataResponse{
			ElapsedMs:     result.Metadata.Elapsed.Milliseconds(),
			ModelUsed:     result.Metadata.ModelUsed,
			ContentLength: result.Metadata.ContentLength,
			CacheHit:      result.Metadata.CacheHit,
		},
		GeneratedAt: result.GeneratedAt,
	}
}

func toHistoryItem(r *domain.GenerationRecord) dto.GenerationHistoryItem {
	types := make([]string, 0, len(r.QuestionTypes))
	for _, t := range r.QuestionTypes {
		types = append(types, string(t))
	}
	return dto.GenerationHistoryItem{
		ID:            r.ID,
		Topic:         r.Topic,
		Difficulty:    string(r.Difficulty),
		NumQuestions:  r.NumQuestions,
		QuestionTypes: types,
		ModelUsed:     r.ModelUsed,
		CacheHit:      r.CacheHit,
		ElapsedMs:     r.ElapsedMs,
		ContentLength: r.ContentLength,
		CreatedAt:     r.CreatedAt,
	}
}
