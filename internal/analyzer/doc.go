// Package analyzer provides the document-layout analysis boundary for the
// ESG pipeline. Two implementations exist: LayoutClient talks to a remote
// layout-analysis REST service, and SheetAnalyzer analyzes spreadsheet
// bytes locally with excelize. Both produce the same normalized
// AnalysisResult shape so the rest of the pipeline does not care which
// engine ran.
package analyzer
