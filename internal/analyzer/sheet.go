package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "esgpulse/internal/errors"
	"esgpulse/pkg/contracts/domain"
)

// SheetAnalyzer performs layout analysis on spreadsheet bytes locally using
// excelize, producing the same result shape as the remote layout service:
// one table per sheet, sheets counted as pages, all cell text concatenated
// as the full text. Two-column sheets additionally contribute their rows as
// key-value pairs, as do workbook defined names.
type SheetAnalyzer struct {
	logger *slog.Logger
}

// NewSheetAnalyzer creates a local spreadsheet analyzer.
func NewSheetAnalyzer(logger *slog.Logger) *SheetAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetAnalyzer{logger: logger}
}

// Analyze opens the workbook from memory and maps every sheet into the
// analysis result. A workbook that cannot be opened is an analysis failure.
func (a *SheetAnalyzer) Analyze(ctx context.Context, content []byte, filename string) (*domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, apierrors.NewAnalysisError(filename, err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, apierrors.NewAnalysisError(filename, fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()

	result := &domain.AnalysisResult{}
	var text strings.Builder

	sheets := f.GetSheetList()
	result.PageCount = len(sheets)

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			a.logger.Warn("failed to read sheet, skipping",
				slog.String("file", filename),
				slog.String("sheet", sheet),
				slog.String("error", err.Error()))
			continue
		}

		table := buildTable(rows)
		if len(table.Cells) > 0 {
			result.Tables = append(result.Tables, table)
		}

		for _, row := range rows {
			if line := strings.TrimSpace(strings.Join(row, " ")); line != "" {
				if text.Len() > 0 {
					text.WriteString("\n")
				}
				text.WriteString(line)
			}
		}

		if table.ColumnCount == 2 {
			result.KeyValuePairs = append(result.KeyValuePairs, pairsFromRows(rows)...)
		}
	}

	for _, dn := range f.GetDefinedName() {
		result.KeyValuePairs = append(result.KeyValuePairs, domain.AnalyzedKeyValue{
			Key:        &domain.KVContent{Content: dn.Name},
			Value:      &domain.KVContent{Content: dn.RefersTo},
			Confidence: 1.0,
		})
	}

	result.FullText = text.String()

	a.logger.Debug("workbook analyzed",
		slog.String("file", filename),
		slog.Int("sheets", result.PageCount),
		slog.Int("tables", len(result.Tables)),
		slog.Int("key_value_pairs", len(result.KeyValuePairs)))

	return result, nil
}

// Ping always succeeds: the local analyzer has no external dependency.
func (a *SheetAnalyzer) Ping(ctx context.Context) error {
	return ctx.Err()
}

// buildTable converts a sheet's rows into an analyzed table with 0-based
// cell indices. Spans are left unset; the normalizer defaults them to 1.
func buildTable(rows [][]string) domain.AnalyzedTable {
	table := domain.AnalyzedTable{RowCount: len(rows)}
	for rowIdx, row := range rows {
		if len(row) > table.ColumnCount {
			table.ColumnCount = len(row)
		}
		for colIdx, content := range row {
			table.Cells = append(table.Cells, domain.AnalyzedCell{
				RowIndex:    rowIdx,
				ColumnIndex: colIdx,
				Content:     content,
			})
		}
	}
	return table
}

// pairsFromRows reads a two-column sheet as a key-value list.
func pairsFromRows(rows [][]string) []domain.AnalyzedKeyValue {
	var pairs []domain.AnalyzedKeyValue
	for _, row := range rows {
		if len(row) != 2 {
			continue
		}
		pairs = append(pairs, domain.AnalyzedKeyValue{
			Key:        &domain.KVContent{Content: row[0]},
			Value:      &domain.KVContent{Content: row[1]},
			Confidence: 1.0,
		})
	}
	return pairs
}
