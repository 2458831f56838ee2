package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"esgpulse/internal/analyzer"
	"esgpulse/internal/config"
	"esgpulse/internal/esg"
	"esgpulse/internal/infrastructure"
	"esgpulse/internal/pipeline"
	"esgpulse/internal/services"
	"esgpulse/internal/validation"
)

func main() {
	inDir := flag.String("in", "", "input directory for spreadsheet files (defaults to configured paths.input_dir)")
	outDir := flag.String("out", "", "output directory for JSON files (defaults to configured paths.output_dir)")
	workers := flag.Int("workers", 4, "number of documents processed concurrently")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if *inDir == "" {
		*inDir = cfg.Paths.InputDir
	}
	if *outDir == "" {
		*outDir = cfg.Paths.OutputDir
	}

	if err := run(cfg, logger, *inDir, *outDir, *workers); err != nil {
		logger.Error("Batch processing failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, inDir, outDir string, workers int) error {
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(inDir); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(outDir); err != nil {
		return err
	}

	a, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	processor := pipeline.New(a, esg.DefaultKeywords(), logger)
	service := services.NewProcessService(processor, nil, nil, logger)

	files, err := validator.ListSpreadsheets(inDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Info("No spreadsheet files to process", slog.String("input_dir", inDir))
		return nil
	}

	logger.Info("Starting batch processing",
		slog.Int("files", len(files)),
		slog.Int("workers", workers))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	var processed, failed int
	results := make(chan bool, len(files))

	for _, path := range files {
		g.Go(func() error {
			ok := processOne(ctx, service, path, outDir)
			results <- ok
			// A single bad document never aborts the batch.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	close(results)
	for ok := range results {
		if ok {
			processed++
		} else {
			failed++
		}
	}

	logger.Info("Batch processing complete",
		slog.Int("processed", processed),
		slog.Int("failed", failed))
	return nil
}

// processOne runs a single file through the pipeline and writes either the
// processed document or the error document.
func processOne(ctx context.Context, service *services.ProcessService, path, outDir string) bool {
	filename := filepath.Base(path)
	ctx = infrastructure.ContextWithTraceID(ctx)
	logger := infrastructure.LoggerWithContext(ctx)

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read input file",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		return false
	}

	doc, err := service.ProcessDocument(ctx, filename, content)
	if err != nil {
		if service.IsSkip(err) {
			return true
		}
		writeJSON(logger, outDir, filename, service.ErrorDocument(err, filename))
		return false
	}

	writeJSON(logger, outDir, filename, doc)
	return true
}

func writeJSON(logger *slog.Logger, outDir, filename string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal output",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		return
	}
	outPath := filepath.Join(outDir, filename+".json")
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Error("Failed to write output",
			slog.String("path", outPath),
			slog.String("error", err.Error()))
	}
}

// buildAnalyzer selects the analysis engine from configuration.
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
