package handler

import (
	"studyhub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the quiz generation API on app.
func RegisterRoutes(app *fiber.App, h *QuizGenerationHandler) {
	validationMiddleware := middleware.NewValidationMiddleware()

	app.Get("/health", h.Health)

	apiGroup := app.Group("/api")
	quizzes := apiGroup.Group("/quizzes")
	quizzes.Post("/generate", h.GenerateQuiz)
	quizzes.Get("/generations", validationMiddleware.ValidateHistoryParams(), h.ListGenerations)
}
