package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/damdeez/newsie/internal/app"
	"github.com/damdeez/newsie/internal/config"
	"github.com/damdeez/newsie/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "newsie start failed: %v\n", err)
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

	logger.InfoObj("newsie starting", "config", map[string]any{
		"env":             cfg.Env,
		"http_addr":       cfg.HTTPAddr,
		"news_provider":   cfg.NewsProvider,
		"default_country": cfg.DefaultCountry,
		"search_debounce": cfg.SearchDebounce.String(),
		"session_idle":    cfg.SessionIdle.String(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api, err := app.NewAPI(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize api", "error", err.Error())
		return err
	}

	if err := api.Run(ctx); err != nil {
		return fmt.Errorf("api run: %w", err)
	}

	return nil
}
