// @title StudyHub Quiz Generation API
// @version 1.0
// @description Generates validated quiz questions from a topic or source text using an LLM.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "studyhub/cmd/api/docs"
	"studyhub/internal/adapter"
	"studyhub/internal/adapter/llm"
	"studyhub/internal/cache"
	"studyhub/internal/config"
	"studyhub/internal/database"
	"studyhub/internal/domain"
	"studyhub/internal/handler"
	"studyhub/internal/logger"
	"studyhub/internal/middleware"
	"studyhub/internal/repository"
	"studyhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	// Cache backend
	cacheBackend, redisClient, err := newCache(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	appLogger.Info("Cache initialized", zap.String("backend", cfg.Cache.Backend))

	// LLM client
	llmClient, err := llm.NewFromConfig(cfg.LLM, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM client", zap.Error(err))
	}

	opts := []service.Option{
		service.WithCacheTTL(cfg.Generation.CacheTTL),
		service.WithBackoffBase(cfg.Generation.BackoffBase),
		service.WithLogger(appLogger),
	}

	// Optional generation history
	var db *sqlx.DB
	if cfg.DB.Enabled {
		db, err = database.NewSQLXOracleDB(ctx, cfg.GetDSN())
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer database.Close(db)
		opts = append(opts, service.WithHistory(repository.NewSQLXGenerationHistoryRepository(db)))
		appLogger.Info("Generation history enabled")
	}

	generationService := service.NewQuizGenerationService(llmClient, cacheBackend, toDomainModels(cfg.LLM.Models), opts...)
	generationHandler := handler.NewQuizGenerationHandler(generationService, cacheBackend)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))

	app.Get("/swagger/*", swagger.HandlerDefault)
	handler.RegisterRoutes(app, generationHandler)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}

func newCache(ctx context.Context, cfg *config.Config) (domain.Cache, *redis.Client, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return adapter.NewRedisCacheAdapter(client), client, nil
	case "memory":
		return cache.NewMemoryCache(), nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
}

func toDomainModels(models []config.ModelConfig) []domain.ModelConfig {
	out := make([]domain.ModelConfig, 0, len(models))
	for _, m := range models {
		out = append(out, domain.ModelConfig{
			Name:        m.Name,
			MaxAttempts: m.MaxAttempts,
			Temperature: m.Temperature,
			MaxTokens:   m.MaxTokens,
		})
	}
	return out
}
