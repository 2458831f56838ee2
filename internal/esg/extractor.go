package esg

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"esgpulse/pkg/contracts/domain"
)

// numberPattern matches signed decimal tokens. It deliberately excludes
// thousands separators, so "1,000" splits into "1" and "000" and the first
// token wins. Downstream consumers rely on this exact tokenization.
var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// Extractor pulls numeric metrics out of normalized tables. Row 0 of every
// table is treated as the header row regardless of content; columns whose
// header matches a category keyword are scanned for numeric values.
type Extractor struct {
	keywords Keywords
	logger   *slog.Logger
}

// NewExtractor creates an extractor over the given keyword configuration.
func NewExtractor(keywords Keywords, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{keywords: keywords, logger: logger}
}

// Extract scans every table independently and returns numeric findings per
// category. The result always contains all three category keys. Cells that
// yield no numeric token are skipped silently; nothing in a single table
// can fail the extraction.
func (e *Extractor) Extract(tables []domain.Table) domain.ESGMetrics {
	metrics := domain.NewESGMetrics()

	for _, table := range tables {
		headers, dataRows := e.organizeRows(table)
		if len(headers) == 0 {
			continue
		}

		for colIdx, header := range headers {
			category, ok := e.categorizeHeader(header)
			if !ok {
				continue
			}

			for _, row := range dataRows {
				if colIdx >= len(row) {
					// Ragged row: nothing in this column.
					continue
				}
				value := row[colIdx]
				numbers := numberPattern.FindAllString(value, -1)
				if len(numbers) == 0 {
					continue
				}
				metrics[category] = append(metrics[category],
					domain.NewNumericFinding(header, numbers[0], ExtractUnit(value), value))
			}
		}
	}

	return metrics
}

// organizeRows groups a table's unordered cells into a header slice (row 0)
// and data rows, each ordered by column index. A table with no cells yields
// no headers and is skipped by the caller.
func (e *Extractor) organizeRows(table domain.Table) (headers []string, dataRows [][]string) {
	if len(table.Cells) == 0 {
		return nil, nil
	}

	maxRow := 0
	for _, cell := range table.Cells {
		if cell.RowIndex > maxRow {
			maxRow = cell.RowIndex
		}
	}

	for rowIdx := 0; rowIdx <= maxRow; rowIdx++ {
		var rowCells []domain.Cell
		for _, cell := range table.Cells {
			if cell.RowIndex == rowIdx {
				rowCells = append(rowCells, cell)
			}
		}
		sort.Slice(rowCells, func(i, j int) bool {
			return rowCells[i].ColumnIndex < rowCells[j].ColumnIndex
		})

		contents := make([]string, len(rowCells))
		for i, cell := range rowCells {
			contents[i] = cell.Content
		}

		if rowIdx == 0 {
			headers = contents
		} else {
			dataRows = append(dataRows, contents)
		}
	}

	return headers, dataRows
}

// categorizeHeader assigns a header to the first category, in priority
// order, with any keyword contained in the lowercased header text.
func (e *Extractor) categorizeHeader(header string) (domain.Category, bool) {
	headerLower := strings.ToLower(header)
	for _, category := range domain.Categories {
		for _, keyword := range e.keywords[category] {
			if strings.Contains(headerLower, strings.ToLower(keyword)) {
				return category, true
			}
		}
	}
	return "", false
}

// Merge appends the extractor's numeric findings after the scanner's keyword
// findings, category by category, preserving both orders.
func Merge(dst, src domain.ESGMetrics) domain.ESGMetrics {
	for _, category := range domain.Categories {
		dst[category] = append(dst[category], src[category]...)
	}
	return dst
}
