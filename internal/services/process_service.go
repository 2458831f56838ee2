package services

import (
	"context"
	"log/slog"
	"time"

	apierrors "esgpulse/internal/errors"
	"esgpulse/internal/infrastructure"
	"esgpulse/internal/notify"
	"esgpulse/internal/pipeline"
	"esgpulse/internal/validation"
	"esgpulse/pkg/contracts/domain"
)

// ProcessService runs documents through the pipeline and handles the
// surrounding concerns: the spreadsheet extension gate, metrics, and event
// broadcasting. The pipeline itself stays pure; everything observable
// happens here.
type ProcessService struct {
	processor *pipeline.Processor
	metrics   *infrastructure.Metrics
	hub       *notify.Hub
	logger    *slog.Logger
}

// NewProcessService creates a process service. metrics and hub may be nil
// for entry points that do not expose them.
func NewProcessService(processor *pipeline.Processor, metrics *infrastructure.Metrics, hub *notify.Hub, logger *slog.Logger) *ProcessService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessService{
		processor: processor,
		metrics:   metrics,
		hub:       hub,
		logger:    logger,
	}
}

// ProcessDocument gates, processes, and reports one document. A file with an
// unrecognized extension returns ErrUnsupportedFileType and produces no
// output artifact. An analysis failure returns the original error; callers
// decide whether to persist the error document.
func (s *ProcessService) ProcessDocument(ctx context.Context, filename string, content []byte) (*domain.ProcessedDocument, error) {
	if err := validation.CheckSpreadsheet(filename); err != nil {
		s.logger.WarnContext(ctx, "skipping non-spreadsheet file",
			slog.String("file", filename))
		if s.metrics != nil {
			s.metrics.DocumentsSkipped.Add(ctx, 1)
		}
		s.hub.Broadcast(notify.Event{
			Type:    notify.TypeDocumentSkipped,
			Payload: map[string]string{"filename": filename},
		})
		return nil, err
	}

	start := time.Now()
	doc, err := s.processor.Process(ctx, content, filename, int64(len(content)))
	if err != nil {
		if s.metrics != nil {
			s.metrics.DocumentsFailed.Add(ctx, 1)
		}
		s.hub.Broadcast(notify.Event{
			Type:    notify.TypeDocumentFailed,
			Payload: s.processor.ErrorDocument(err, filename),
		})
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DocumentsProcessed.Add(ctx, 1)
		s.metrics.ProcessingDuration.Record(ctx, time.Since(start).Seconds())
		s.metrics.RecordFindings(ctx, doc.ESGMetrics)
	}
	s.hub.Broadcast(notify.Event{
		Type:    notify.TypeDocumentProcessed,
		Payload: doc.ProcessingSummary,
	})

	return doc, nil
}

// ErrorDocument builds the error output artifact for a failed document.
func (s *ProcessService) ErrorDocument(err error, filename string) *domain.ErrorDocument {
	return s.processor.ErrorDocument(err, filename)
}

// IsSkip reports whether the error from ProcessDocument was a silent skip.
func (s *ProcessService) IsSkip(err error) bool {
	return apierrors.IsSkip(err)
}
