package main

import (
	"context"
	"log"
	"time"

	"studyhub/internal/config"
	"studyhub/internal/database"
	"studyhub/internal/logger"

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

	if !cfg.DB.Enabled {
		l.Warn("db.enabled is false; running migrations against the configured database anyway")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.RunMigrations(ctx, db, database.Migrations()); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
}
