package analyzer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook produces xlsx bytes with one sheet per entry.
func buildWorkbook(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for rowIdx, row := range rows {
			for colIdx, content := range row {
				cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, content))
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestSheetAnalyzer_Analyze(t *testing.T) {
	content := buildWorkbook(t, map[string][][]string{
		"Metrics": {
			{"Metric", "Value", "Unit"},
			{"Emissions", "88.5", "tCO2e"},
		},
	})

	a := NewSheetAnalyzer(nil)
	result, err := a.Analyze(context.Background(), content, "metrics.xlsx")
	require.NoError(t, err)

	assert.Equal(t, 1, result.PageCount)
	require.Len(t, result.Tables, 1)

	table := result.Tables[0]
	assert.Equal(t, 2, table.RowCount)
	assert.Equal(t, 3, table.ColumnCount)
	require.Len(t, table.Cells, 6)
	assert.Equal(t, 0, table.Cells[0].RowIndex)
	assert.Equal(t, 0, table.Cells[0].ColumnIndex)
	assert.Equal(t, "Metric", table.Cells[0].Content)
	// Spans are left for the normalizer to default.
	assert.Equal(t, 0, table.Cells[0].RowSpan)

	assert.Equal(t, "Metric Value Unit\nEmissions 88.5 tCO2e", result.FullText)
	assert.Empty(t, result.KeyValuePairs)
}

func TestSheetAnalyzer_Analyze_TwoColumnSheetYieldsPairs(t *testing.T) {
	content := buildWorkbook(t, map[string][][]string{
		"Facts": {
			{"Reporting Year", "2024"},
			{"Auditor", "Example LLP"},
		},
	})

	a := NewSheetAnalyzer(nil)
	result, err := a.Analyze(context.Background(), content, "facts.xlsx")
	require.NoError(t, err)

	require.Len(t, result.KeyValuePairs, 2)
	pair := result.KeyValuePairs[0]
	require.NotNil(t, pair.Key)
	require.NotNil(t, pair.Value)
	assert.Equal(t, "Reporting Year", pair.Key.Content)
	assert.Equal(t, "2024", pair.Value.Content)
	assert.Equal(t, 1.0, pair.Confidence)
}

func TestSheetAnalyzer_Analyze_InvalidWorkbook(t *testing.T) {
	a := NewSheetAnalyzer(nil)

	result, err := a.Analyze(context.Background(), []byte("not a workbook"), "junk.xlsx")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "junk.xlsx")
}

func TestSheetAnalyzer_Analyze_CanceledContext(t *testing.T) {
	a := NewSheetAnalyzer(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, nil, "whatever.xlsx")
	require.Error(t, err)
}

func TestSheetAnalyzer_Ping(t *testing.T) {
	a := NewSheetAnalyzer(nil)

	assert.NoError(t, a.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, a.Ping(ctx))
}
