package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	appLogger "github.com/somya-cb/ai-travel-assistant/app/logger"
	"github.com/somya-cb/ai-travel-assistant/config"
	"github.com/somya-cb/ai-travel-assistant/internal/container"
)

// Embeds every destination that has no vector yet, in batches.
func main() {
	batchSize := flag.Int("batch", 50, "destinations embedded per batch")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := appLogger.New(os.Getenv("APP_ENV"), os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := container.NewContainer(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to build container", slog.Any("error", err))
		os.Exit(1)
	}
	defer c.Close()

	if !c.WaitForDB(ctx) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	logger.Info("Starting embedding backfill", slog.Int("batch_size", *batchSize))
	stored, err := c.DestinationService.Backfill(ctx, c.Embedder, *batchSize)
	if err != nil {
		logger.Error("Backfill stopped", slog.Int("stored", stored), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Embedding backfill completed", slog.Int("stored", stored))
}
