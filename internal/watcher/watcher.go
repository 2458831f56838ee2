package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"esgpulse/internal/infrastructure"
	"esgpulse/internal/services"
	"esgpulse/internal/validation"
)

const (
	// settlePollInterval is how often a newly created file is re-checked
	// while waiting for its size to stop changing.
	settlePollInterval = 200 * time.Millisecond
	// settleTimeout bounds the wait for a file still being written.
	settleTimeout = 30 * time.Second
)

// Watcher is the filesystem trigger for the pipeline: it watches the input
// directory and processes every spreadsheet that appears, writing one
// `<name>.json` artifact per input. Non-spreadsheet files are skipped
// silently; failures produce an error document instead of the output.
type Watcher struct {
	inputDir  string
	outputDir string
	service   *services.ProcessService
	logger    *slog.Logger
}

// New creates a watcher over the input and output directories.
func New(inputDir, outputDir string, service *services.ProcessService, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		inputDir:  inputDir,
		outputDir: outputDir,
		service:   service,
		logger:    logger.With(slog.String("component", "watcher")),
	}
}

// Run watches the input directory until the context is canceled. Existing
// files are processed first so a backlog is not lost across restarts.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.inputDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.inputDir, err)
	}

	w.logger.Info("watching input directory",
		slog.String("input_dir", w.inputDir),
		slog.String("output_dir", w.outputDir))

	if err := w.processBacklog(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher shutting down")
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.handleFile(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// processBacklog handles files already present in the input directory.
func (w *Watcher) processBacklog(ctx context.Context) error {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return fmt.Errorf("failed to read input directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		w.handleFile(ctx, filepath.Join(w.inputDir, entry.Name()))
	}
	return nil
}

// handleFile processes one path end to end. Every document gets its own
// trace ID so its log lines correlate.
func (w *Watcher) handleFile(ctx context.Context, path string) {
	filename := filepath.Base(path)
	ctx = infrastructure.ContextWithTraceID(ctx)
	logger := infrastructure.LoggerWithContext(ctx)

	// Cheap gate before touching the file at all.
	if !validation.IsSupportedSpreadsheet(filename) {
		logger.Debug("ignoring non-spreadsheet file", slog.String("file", filename))
		return
	}

	if err := w.waitSettled(ctx, path); err != nil {
		logger.Warn("file never settled, skipping",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read input file",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		return
	}

	logger.Info("processing document",
		slog.String("file", filename),
		slog.Int("size_bytes", len(content)))

	doc, err := w.service.ProcessDocument(ctx, filename, content)
	if err != nil {
		if w.service.IsSkip(err) {
			return
		}
		// No partial output: the error document replaces the artifact.
		w.writeJSON(ctx, filename, w.service.ErrorDocument(err, filename))
		return
	}

	w.writeJSON(ctx, filename, doc)
}

// waitSettled waits for the file's size to stop changing between polls,
// so documents still being copied in are not read half-written.
func (w *Watcher) waitSettled(ctx context.Context, path string) error {
	deadline := time.Now().Add(settleTimeout)
	var lastSize int64 = -1

	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize && info.Size() > 0 {
			return nil
		}
		lastSize = info.Size()

		if time.Now().After(deadline) {
			return fmt.Errorf("file size still changing after %s", settleTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settlePollInterval):
		}
	}
}

// writeJSON persists the output artifact as `<name>.json` in the output
// directory.
func (w *Watcher) writeJSON(ctx context.Context, filename string, v interface{}) {
	logger := infrastructure.LoggerWithContext(ctx)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("failed to marshal output",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		return
	}

	outPath := filepath.Join(w.outputDir, filename+".json")
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Error("failed to write output",
			slog.String("path", outPath),
			slog.String("error", err.Error()))
		return
	}

	logger.Info("output written", slog.String("path", outPath))
}
