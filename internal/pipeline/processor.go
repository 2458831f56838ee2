package pipeline

import (
	"context"
	"log/slog"
	"time"

	"esgpulse/internal/analyzer"
	apierrors "esgpulse/internal/errors"
	"esgpulse/internal/esg"
	"esgpulse/pkg/contracts/domain"
)

// Processor runs one document through the full pipeline: analysis,
// normalization, keyword scanning, and numeric extraction. A Processor is
// stateless across invocations and safe for concurrent use; its keyword
// configuration is read-only.
type Processor struct {
	analyzer  analyzer.Analyzer
	scanner   *esg.Scanner
	extractor *esg.Extractor
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a processor over the given analysis engine and keyword
// configuration.
func New(a analyzer.Analyzer, keywords esg.Keywords, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		analyzer:  a,
		scanner:   esg.NewScanner(keywords, logger),
		extractor: esg.NewExtractor(keywords, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Process analyzes the document bytes and builds the full output document.
// An analysis failure aborts the document and is returned unchanged; there
// is no partial output. Extraction anomalies inside scanning or numeric
// extraction never fail a document.
func (p *Processor) Process(ctx context.Context, content []byte, filename string, size int64) (*domain.ProcessedDocument, error) {
	result, err := p.analyzer.Analyze(ctx, content, filename)
	if err != nil {
		p.logger.ErrorContext(ctx, "document analysis failed",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		return nil, err
	}

	doc := p.Normalize(result, filename)

	metrics := p.scanner.Scan(doc)
	doc.ESGMetrics = esg.Merge(metrics, p.extractor.Extract(doc.ExtractedTables))

	doc.ProcessingSummary = &domain.ProcessingSummary{
		Status:               "success",
		InputFilename:        filename,
		InputSizeBytes:       size,
		ESGCategoriesFound:   doc.ESGMetrics.CategoriesFound(),
		TotalTablesExtracted: len(doc.ExtractedTables),
		TotalKeyValuePairs:   len(doc.KeyValuePairs),
	}

	p.logger.InfoContext(ctx, "document processed",
		slog.String("file", filename),
		slog.Int("total_pages", doc.Metadata.TotalPages),
		slog.Int("tables", len(doc.ExtractedTables)),
		slog.Int("key_value_pairs", len(doc.KeyValuePairs)),
		slog.Int("esg_findings", doc.ESGMetrics.TotalFindings()))

	return doc, nil
}

// Normalize converts a raw analysis result into the structured document
// representation. Missing collections default to empty; cell spans default
// to 1; nil key or value objects become empty strings. Normalization never
// fails.
func (p *Processor) Normalize(result *domain.AnalysisResult, filename string) *domain.ProcessedDocument {
	doc := &domain.ProcessedDocument{
		Metadata: domain.DocumentMetadata{
			Filename:    filename,
			ProcessedAt: p.now().UTC(),
			ModelUsed:   domain.ModelLayout,
			TotalPages:  result.PageCount,
		},
		ESGMetrics:      domain.NewESGMetrics(),
		ExtractedTables: []domain.Table{},
		KeyValuePairs:   []domain.KeyValuePair{},
		TextContent:     result.FullText,
	}

	for tableIdx, raw := range result.Tables {
		table := domain.Table{
			TableID:     tableIdx,
			RowCount:    raw.RowCount,
			ColumnCount: raw.ColumnCount,
			Cells:       make([]domain.Cell, 0, len(raw.Cells)),
		}
		for _, cell := range raw.Cells {
			rowSpan, colSpan := cell.RowSpan, cell.ColumnSpan
			if rowSpan == 0 {
				rowSpan = 1
			}
			if colSpan == 0 {
				colSpan = 1
			}
			table.Cells = append(table.Cells, domain.Cell{
				RowIndex:    cell.RowIndex,
				ColumnIndex: cell.ColumnIndex,
				Content:     cell.Content,
				RowSpan:     rowSpan,
				ColumnSpan:  colSpan,
			})
		}
		doc.ExtractedTables = append(doc.ExtractedTables, table)
	}

	for _, raw := range result.KeyValuePairs {
		pair := domain.KeyValuePair{Confidence: raw.Confidence}
		if raw.Key != nil {
			pair.Key = raw.Key.Content
		}
		if raw.Value != nil {
			pair.Value = raw.Value.Content
		}
		doc.KeyValuePairs = append(doc.KeyValuePairs, pair)
	}

	return doc
}

// ErrorDocument builds the error output artifact for a document that could
// not be processed. It replaces the processed document entirely.
func (p *Processor) ErrorDocument(err error, filename string) *domain.ErrorDocument {
	return &domain.ErrorDocument{
		Error: domain.ErrorDetail{
			Message:   err.Error(),
			Filename:  filename,
			Timestamp: p.now().UTC(),
			Traceback: apierrors.Traceback(),
		},
	}
}
