package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"esgpulse/internal/analyzer"
	"esgpulse/internal/config"
	"esgpulse/internal/esg"
	"esgpulse/internal/infrastructure"
	"esgpulse/internal/pipeline"
	"esgpulse/internal/services"
	"esgpulse/internal/validation"
	"esgpulse/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Watcher failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOutputDirectory(cfg.Paths.OutputDir); err != nil {
		return err
	}

	a, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	processor := pipeline.New(a, esg.DefaultKeywords(), logger)
	service := services.NewProcessService(processor, nil, nil, logger)
	w := watcher.New(cfg.Paths.InputDir, cfg.Paths.OutputDir, service, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Watcher starting",
		slog.String("input_dir", cfg.Paths.InputDir),
		slog.String("output_dir", cfg.Paths.OutputDir),
		slog.String("analyzer_mode", cfg.Analyzer.Mode))

	return w.Run(ctx)
}

func buildAnalyzer(cfg *config.Config, logger *slog.Logger) (analyzer.Analyzer, error) {
	switch cfg.Analyzer.Mode {
	case "remote":
		return analyzer.NewLayoutClient(analyzer.LayoutClientConfig{
			Endpoint:     cfg.Analyzer.Endpoint,
			APIKey:       cfg.Analyzer.APIKey,
			Model:        cfg.Analyzer.Model,
			PollInterval: cfg.Analyzer.PollInterval,
			RateRPS:      cfg.Analyzer.RateRPS,
			RateBurst:    cfg.Analyzer.RateBurst,
		}, logger)
	case "local":
		return analyzer.NewSheetAnalyzer(logger), nil
	default:
		return nil, fmt.Errorf("unknown analyzer mode %q", cfg.Analyzer.Mode)
	}
}
