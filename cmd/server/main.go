package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"esgpulse/internal/analyzer"
	"esgpulse/internal/config"
	"esgpulse/internal/esg"
	"esgpulse/internal/infrastructure"
	"esgpulse/internal/notify"
	"esgpulse/internal/pipeline"
	"esgpulse/internal/services"
	transport "esgpulse/internal/transport/http"
	"esgpulse/pkg/contracts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if err := run(cfg, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	a, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	metrics, err := infrastructure.NewMetrics(contracts.Version)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	hub := notify.NewHub(logger)
	processor := pipeline.New(a, esg.DefaultKeywords(), logger)

	deps := transport.RouterDeps{
		Config:  cfg,
		Health:  services.NewHealthService(a, cfg.Paths, logger),
		Process: services.NewProcessService(processor, metrics, hub, logger),
		Metrics: metrics,
		Hub:     hub,
		Logger:  logger,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      transport.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening",
			slog.Int("port", cfg.Server.Port),
			slog.String("analyzer_mode", cfg.Analyzer.Mode),
			slog.String("version", contracts.Version))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	hub.Close()
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Metrics shutdown failed", "error", err)
	}
	return server.Shutdown(shutdownCtx)
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
