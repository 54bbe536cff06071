package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joao-fontenele/lessons-booking/internal/config"
	"github.com/joao-fontenele/lessons-booking/internal/lessons"
	"github.com/joao-fontenele/lessons-booking/internal/seed"
	"github.com/joao-fontenele/lessons-booking/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load[config.Seed]()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := telemetry.OpenMongo(ctx, cfg.URI)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := lessons.NewLessonRepository(client.Database(cfg.Database))

	n, err := seed.Reseed(ctx, repo, seed.Lessons)
	if err != nil {
		logger.Error("failed to seed lessons", "error", err)
		_ = client.Disconnect(context.Background())
		os.Exit(1)
	}

	logger.Info("lessons seeded", "count", n, "database", cfg.Database)
}
