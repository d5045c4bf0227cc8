package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagetalk/internal/adapter/gemini"
	"pagetalk/internal/app"
	"pagetalk/internal/config"
	"pagetalk/internal/extract"
	"pagetalk/internal/logger"
	"pagetalk/internal/retrieval"
)

func main() {
	slog.SetDefault(slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ai, err := gemini.NewClient(ctx, cfg.GeminiAPIKey,
		cfg.EmbeddingModel, cfg.GenerationModel,
		time.Duration(cfg.ModelTimeoutSeconds)*time.Second)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer ai.Close()

	fetchTimeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	transcripts := extract.NewTranscriptClient(fetchTimeout)
	pdfs := extract.NewPDFFetcher(fetchTimeout)

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	a := app.New(cfg, ai, transcripts, pdfs, queryLogger)
	if err := a.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
