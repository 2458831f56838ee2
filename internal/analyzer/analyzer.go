package analyzer

import (
	"context"

	"esgpulse/pkg/contracts/domain"
)

// Analyzer is the document-layout analysis boundary. Implementations take
// raw document bytes and return the normalized analysis result: page count,
// full text, tables of cells, and key-value pairs. The pipeline treats the
// engine as a black box and performs no retries; a failed call fails the
// document.
type Analyzer interface {
	// Analyze runs layout analysis on the document content. The returned
	// result is read-only input to the processing pipeline.
	Analyze(ctx context.Context, content []byte, filename string) (*domain.AnalysisResult, error)

	// Ping reports whether the analysis engine is reachable. Used by the
	// health surface.
	Ping(ctx context.Context) error
}
