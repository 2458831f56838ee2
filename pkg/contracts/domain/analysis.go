package domain

// ModelLayout is the layout-analysis model used for document extraction.
// It is recorded in the output metadata so consumers know which engine
// produced the structure.
const ModelLayout = "prebuilt-layout"

// AnalysisResult is the normalized output of a document-layout analysis
// engine. It is the raw input to the processing pipeline and is treated
// as read-only: pages, full text, tables of cells, and key-value pairs.
type AnalysisResult struct {
	PageCount     int
	FullText      string
	Tables        []AnalyzedTable
	KeyValuePairs []AnalyzedKeyValue
}

// AnalyzedTable is a table as reported by the analysis engine. Cells carry
// their own row/column indices; the engine makes no ordering guarantee on
// the Cells slice.
type AnalyzedTable struct {
	RowCount    int
	ColumnCount int
	Cells       []AnalyzedCell
}

// AnalyzedCell is a single table cell from the analysis engine.
// RowSpan and ColumnSpan may be zero when the engine omits them;
// the normalizer defaults them to 1.
type AnalyzedCell struct {
	RowIndex    int
	ColumnIndex int
	Content     string
	RowSpan     int
	ColumnSpan  int
}

// KVContent is the content element of a key-value pair. Analysis engines
// report keys and values as nullable objects, so the pair references them
// by pointer.
type KVContent struct {
	Content string
}

// AnalyzedKeyValue is a key-value pair from the analysis engine. Key and
// Value may each be nil when the engine could not resolve that side.
type AnalyzedKeyValue struct {
	Key        *KVContent
	Value      *KVContent
	Confidence float64
}
