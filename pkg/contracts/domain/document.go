package domain

import (
	"encoding/json"
	"time"
)

// Category classifies a finding as environmental, social, or governance.
type Category string

const (
	CategoryEnvironmental Category = "environmental"
	CategorySocial        Category = "social"
	CategoryGovernance    Category = "governance"
)

// Categories is the fixed priority order used everywhere a finding could
// belong to more than one category: environmental is checked before social,
// social before governance. Iteration over this slice, never over a map,
// is what keeps scan output deterministic.
var Categories = []Category{
	CategoryEnvironmental,
	CategorySocial,
	CategoryGovernance,
}

// Table is a normalized table extracted from a document. TableID is the
// 0-based position of the table in the analysis result.
type Table struct {
	TableID     int    `json:"table_id"`
	RowCount    int    `json:"row_count"`
	ColumnCount int    `json:"column_count"`
	Cells       []Cell `json:"cells"`
}

// Cell is a normalized table cell. Indices are 0-based; spans default to 1.
type Cell struct {
	RowIndex    int    `json:"row_index"`
	ColumnIndex int    `json:"column_index"`
	Content     string `json:"content"`
	RowSpan     int    `json:"row_span"`
	ColumnSpan  int    `json:"column_span"`
}

// KeyValuePair is a normalized key-value pair. Key and Value are empty
// strings when the engine reported no content for that side.
type KeyValuePair struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// FindingKind discriminates the two finding shapes that share a category list.
type FindingKind string

const (
	FindingKindKeyword FindingKind = "keyword"
	FindingKindNumeric FindingKind = "numeric"
)

// Finding is a single ESG observation. A keyword finding records where a
// category keyword appeared in the document text; a numeric finding records
// a value extracted from a categorized table column. Both shapes live in the
// same per-category list, in insertion order (keyword findings first, then
// numeric findings), and serialize with only their own fields so the output
// JSON matches the published shape.
type Finding struct {
	Kind FindingKind `json:"-"`

	// Keyword finding fields.
	Keyword string    `json:"keyword,omitempty"`
	Context string    `json:"context,omitempty"`
	FoundAt time.Time `json:"found_at,omitempty"`

	// Numeric finding fields. Value is kept as the matched text, never
	// parsed, so serialization is lossless.
	Metric  string `json:"metric,omitempty"`
	Value   string `json:"value,omitempty"`
	Unit    string `json:"unit,omitempty"`
	RawText string `json:"raw_text,omitempty"`
}

// NewKeywordFinding builds a keyword finding with the original (non-lowered)
// keyword text and the trimmed context window around its first occurrence.
func NewKeywordFinding(keyword, context string, foundAt time.Time) Finding {
	return Finding{
		Kind:    FindingKindKeyword,
		Keyword: keyword,
		Context: context,
		FoundAt: foundAt,
	}
}

// NewNumericFinding builds a numeric finding for a categorized table column.
func NewNumericFinding(metric, value, unit, rawText string) Finding {
	return Finding{
		Kind:    FindingKindNumeric,
		Metric:  metric,
		Value:   value,
		Unit:    unit,
		RawText: rawText,
	}
}

type keywordFindingJSON struct {
	Keyword string    `json:"keyword"`
	Context string    `json:"context"`
	FoundAt time.Time `json:"found_at"`
}

type numericFindingJSON struct {
	Metric  string `json:"metric"`
	Value   string `json:"value"`
	Unit    string `json:"unit"`
	RawText string `json:"raw_text"`
}

// MarshalJSON emits only the fields belonging to the finding's kind, so a
// numeric finding always carries metric/value/unit/raw_text (unit may be
// empty) and a keyword finding always carries keyword/context/found_at.
func (f Finding) MarshalJSON() ([]byte, error) {
	if f.Kind == FindingKindKeyword || (f.Kind == "" && f.Keyword != "") {
		return json.Marshal(keywordFindingJSON{
			Keyword: f.Keyword,
			Context: f.Context,
			FoundAt: f.FoundAt,
		})
	}
	return json.Marshal(numericFindingJSON{
		Metric:  f.Metric,
		Value:   f.Value,
		Unit:    f.Unit,
		RawText: f.RawText,
	})
}

// UnmarshalJSON restores the finding and its kind from either shape.
func (f *Finding) UnmarshalJSON(data []byte) error {
	type alias Finding
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*f = Finding(a)
	if f.Keyword != "" {
		f.Kind = FindingKindKeyword
	} else {
		f.Kind = FindingKindNumeric
	}
	return nil
}

// ESGMetrics maps every category to its ordered findings. All three category
// keys are always present, even when a list is empty.
type ESGMetrics map[Category][]Finding

// NewESGMetrics returns a metrics map with all category keys initialized.
func NewESGMetrics() ESGMetrics {
	m := make(ESGMetrics, len(Categories))
	for _, c := range Categories {
		m[c] = []Finding{}
	}
	return m
}

// CategoriesFound returns the categories with at least one finding, in
// priority order.
func (m ESGMetrics) CategoriesFound() []Category {
	found := []Category{}
	for _, c := range Categories {
		if len(m[c]) > 0 {
			found = append(found, c)
		}
	}
	return found
}

// TotalFindings returns the number of findings across all categories.
func (m ESGMetrics) TotalFindings() int {
	total := 0
	for _, findings := range m {
		total += len(findings)
	}
	return total
}

// DocumentMetadata describes one processed document.
type DocumentMetadata struct {
	Filename    string    `json:"filename"`
	ProcessedAt time.Time `json:"processed_at"`
	ModelUsed   string    `json:"model_used"`
	TotalPages  int       `json:"total_pages"`
}

// ProcessingSummary is computed after extraction and appended to the output.
type ProcessingSummary struct {
	Status               string     `json:"status"`
	InputFilename        string     `json:"input_filename"`
	InputSizeBytes       int64      `json:"input_size_bytes"`
	ESGCategoriesFound   []Category `json:"esg_categories_found"`
	TotalTablesExtracted int        `json:"total_tables_extracted"`
	TotalKeyValuePairs   int        `json:"total_key_value_pairs"`
}

// ProcessedDocument is the full output artifact for one document. It is
// constructed once, fully populated, then serialized; there is no partial
// success shape.
type ProcessedDocument struct {
	Metadata          DocumentMetadata   `json:"metadata"`
	ESGMetrics        ESGMetrics         `json:"esg_metrics"`
	ExtractedTables   []Table            `json:"extracted_tables"`
	KeyValuePairs     []KeyValuePair     `json:"key_value_pairs"`
	TextContent       string             `json:"text_content"`
	ProcessingSummary *ProcessingSummary `json:"processing_summary,omitempty"`
}

// ErrorDetail carries the failure information for a document that could not
// be processed.
type ErrorDetail struct {
	Message   string    `json:"message"`
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	Traceback string    `json:"traceback"`
}

// ErrorDocument replaces the processed document when processing fails.
type ErrorDocument struct {
	Error ErrorDetail `json:"error"`
}
