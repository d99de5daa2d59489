package main

import (
	"log"

	"go.uber.org/zap"

	"main/internal/config"
	"main/internal/database"
	"main/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	srv := server.New(cfg, db, logger)

	logger.Info("Starting server", zap.String("port", cfg.Port))
	if err := srv.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to run server", zap.Error(err))
	}
}
