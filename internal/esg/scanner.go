package esg

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"esgpulse/pkg/contracts/domain"
)

// DefaultContextLength is the number of characters captured on each side of
// a matched keyword when building its context snippet.
const DefaultContextLength = 100

// Scanner finds category keywords in a document's combined text. Matching is
// literal case-insensitive substring containment; there is no tokenization
// or semantic analysis.
type Scanner struct {
	keywords      Keywords
	contextLength int
	logger        *slog.Logger
	now           func() time.Time
}

// NewScanner creates a scanner over the given keyword configuration.
func NewScanner(keywords Keywords, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		keywords:      keywords,
		contextLength: DefaultContextLength,
		logger:        logger,
		now:           time.Now,
	}
}

// Scan searches the document for category keywords and returns one keyword
// finding per matched keyword. The result always contains all three category
// keys. Scanning is a pure read of the document: running it twice yields
// identical ordered finding lists.
func (s *Scanner) Scan(doc *domain.ProcessedDocument) domain.ESGMetrics {
	metrics := domain.NewESGMetrics()
	corpus := s.buildCorpus(doc)

	for _, category := range domain.Categories {
		for _, keyword := range s.keywords[category] {
			lowered := strings.ToLower(keyword)
			if !strings.Contains(corpus, lowered) {
				continue
			}
			context := s.extractContext(corpus, lowered)
			if context == "" {
				// Degenerate window; contributes nothing.
				continue
			}
			metrics[category] = append(metrics[category],
				domain.NewKeywordFinding(keyword, context, s.now().UTC()))
		}
		s.logger.Debug("keyword scan completed for category",
			slog.String("category", string(category)),
			slog.Int("findings", len(metrics[category])))
	}

	return metrics
}

// buildCorpus concatenates every text source of the document into one
// lowercase string: body text, then each table cell in normalized order,
// then each key-value pair, all space-separated.
func (s *Scanner) buildCorpus(doc *domain.ProcessedDocument) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(doc.TextContent))

	for _, table := range doc.ExtractedTables {
		for _, cell := range table.Cells {
			b.WriteString(" ")
			b.WriteString(strings.ToLower(cell.Content))
		}
	}

	for _, kv := range doc.KeyValuePairs {
		b.WriteString(" ")
		b.WriteString(strings.ToLower(kv.Key))
		b.WriteString(" ")
		b.WriteString(strings.ToLower(kv.Value))
	}

	return b.String()
}

// extractContext returns the trimmed window around the first occurrence of
// keyword in text, clamped to the text bounds. A keyword appearing multiple
// times contributes only its first occurrence. Window edges that land inside
// a multibyte rune widen to the rune boundary so the snippet stays valid
// UTF-8.
func (s *Scanner) extractContext(text, keyword string) string {
	index := strings.Index(text, keyword)
	if index < 0 {
		return ""
	}
	start := index - s.contextLength
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := index + len(keyword) + s.contextLength
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return strings.TrimSpace(text[start:end])
}
