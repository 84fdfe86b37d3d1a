package samples

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tradestats/domain/comparison"
	"tradestats/domain/core"
	"tradestats/internal"
	"tradestats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var handleTimeQuery = comparison.SampleQuery{
	ValueColumn: "Handle Time",
	GroupColumn: "Queue",
	GroupA:      "billing",
	GroupB:      "support",
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSourceCSV(t *testing.T) {
	path := writeCSV(t, "Queue,Handle Time,Agent\n"+
		"billing,00:02:00,a1\n"+
		"support,00:05:30,a2\n"+
		"billing,00:03:00,a3\n"+
		"sales,00:09:00,a4\n"+
		"support,-,a5\n"+
		"support,00:06:00,a6\n")

	src := NewFileSource(path, internal.NewDiscardLogger())
	assert.Equal(t, "csv:export.csv", src.Name())

	pair, err := src.LoadSamples(context.Background(), handleTimeQuery)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, pair.GroupA)
	assert.Equal(t, []float64{5.5, 6}, pair.GroupB)
	assert.Equal(t, 1, pair.Skipped)
	assert.Equal(t, "handle_time", pair.Query.ValueColumn)
}

func TestFileSourceXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Queue", "CSAT"},
		{"billing", "4"},
		{"billing", "5"},
		{"support", "3"},
		{"support", "2"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src := NewFileSource(path, nil)
	pair, err := src.LoadSamples(context.Background(), comparison.SampleQuery{
		ValueColumn: "csat", GroupColumn: "queue", GroupA: "billing", GroupB: "support",
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, pair.GroupA)
	assert.Equal(t, []float64{3, 2}, pair.GroupB)
}

func TestFileSourceErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		src := NewFileSource(filepath.Join(t.TempDir(), "nope.csv"), nil)
		_, err := src.LoadSamples(ctx, handleTimeQuery)
		assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
		assert.Contains(t, err.Error(), "nope.csv not found")
	})

	t.Run("header only", func(t *testing.T) {
		src := NewFileSource(writeCSV(t, "Queue,Handle Time\n"), nil)
		_, err := src.LoadSamples(ctx, handleTimeQuery)
		assert.Equal(t, errors.CodeSourceError, errors.GetCode(err))
	})

	t.Run("unknown column", func(t *testing.T) {
		src := NewFileSource(writeCSV(t, "Queue,CSAT\nbilling,4\n"), nil)
		_, err := src.LoadSamples(ctx, handleTimeQuery)
		assert.True(t, core.IsInvalidInputError(err))
		assert.Contains(t, err.Error(), "handle_time")
	})

	t.Run("invalid query", func(t *testing.T) {
		src := NewFileSource(writeCSV(t, "Queue,CSAT\nbilling,4\n"), nil)
		_, err := src.LoadSamples(ctx, comparison.SampleQuery{ValueColumn: "csat", GroupColumn: "queue", GroupA: "x", GroupB: "x"})
		assert.True(t, core.IsInvalidInputError(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		src := NewFileSource(writeCSV(t, "Queue,CSAT\nbilling,4\n"), nil)
		_, err := src.LoadSamples(cctx, comparison.SampleQuery{ValueColumn: "csat", GroupColumn: "queue", GroupA: "billing", GroupB: "support"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
