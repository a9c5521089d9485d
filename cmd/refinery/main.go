package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quillhq/article-refinery/internal/app"
	"github.com/quillhq/article-refinery/internal/config"
	"github.com/quillhq/article-refinery/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "refinery run failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("refinery starting", "config_meta", map[string]any{
		"app_env":          cfg.Env,
		"store_base_url":   cfg.ArticleStoreBaseURL,
		"gemini_model":     cfg.GeminiModel,
		"cooldown_seconds": cfg.CooldownSeconds,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runtime, err := app.NewRuntime(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err.Error())
		return err
	}

	if err := runtime.Run(ctx); err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	return nil
}
