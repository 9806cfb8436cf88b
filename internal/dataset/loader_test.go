package dataset

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into the first sheet of a fresh workbook
// and returns the serialized bytes. Cells of type string stay strings,
// everything else is written through as-is.
func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestLoaderLoad(t *testing.T) {
	loader := NewLoader(nil)

	t.Run("parses valid rows and skips the header", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Temperatura", "Umidade", "CO2", "Data", "Ambiente"},
			{23.5, 55.0, 412.0, "05/03/2024", "Sala A"},
			{24.1, 52.0, 430.0, "06/03/2024", "Sala B"},
		})

		samples, err := loader.Load(data)
		require.NoError(t, err)
		require.Len(t, samples, 2)

		assert.InDelta(t, 23.5, samples[0].Temperature, 1e-9)
		assert.Equal(t, "Sala A", samples[0].Category)
		assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local), samples[0].Timestamp)
		assert.Equal(t, "Sala B", samples[1].Category)
	})

	t.Run("header text is ignored in favor of position", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"whatever", "these", "say", "does not", "matter"},
			{23.5, 55.0, 412.0, "05/03/2024", "Sala A"},
		})

		samples, err := loader.Load(data)
		require.NoError(t, err)
		require.Len(t, samples, 1)
	})

	t.Run("string measurements use locale normalization", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Temperatura", "Umidade", "CO2", "Data", "Ambiente"},
			{"23,5", "1.234,5", "412,5", "05/03/2024", "Sala A"},
		})

		samples, err := loader.Load(data)
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.InDelta(t, 23.5, samples[0].Temperature, 1e-9)
		assert.InDelta(t, 1234.5, samples[0].Humidity, 1e-9)
		assert.InDelta(t, 412.5, samples[0].CO2, 1e-9)
	})

	t.Run("invalid rows are skipped without failing the load", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Temperatura", "Umidade", "CO2", "Data", "Ambiente"},
			{23.5, 55.0, 412.0, "05/03/2024", "Sala A"},
			{23.5, 55.0, 412.0, "not a date", "Sala A"},
			{23.5, nil, 412.0, "05/03/2024", "Sala A"},
			{23.5, 55.0, 412.0, "05/03/2024", nil},
		})

		samples, err := loader.Load(data)
		require.NoError(t, err)
		require.Len(t, samples, 1)
	})

	t.Run("short rows pad missing columns as absent", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Temperatura", "Umidade", "CO2", "Data", "Ambiente"},
			{23.5, 55.0},
		})

		samples, err := loader.Load(data)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, KindNoValidRows, loadErr.Kind)
		assert.Empty(t, samples)
	})

	t.Run("unreadable bytes", func(t *testing.T) {
		_, err := loader.Load([]byte("this is not a workbook"))
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, KindUnreadableFile, loadErr.Kind)
	})

	t.Run("header only workbook is empty", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Temperatura", "Umidade", "CO2", "Data", "Ambiente"},
		})

		_, err := loader.Load(data)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, KindEmptyWorkbook, loadErr.Kind)
	})

	t.Run("workbook with no rows at all is empty", func(t *testing.T) {
		data := buildWorkbook(t, nil)

		_, err := loader.Load(data)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, KindEmptyWorkbook, loadErr.Kind)
	})

	t.Run("no valid rows", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Temperatura", "Umidade", "CO2", "Data", "Ambiente"},
			{23.5, 55.0, 412.0, "05/03/2024", nil},
			{23.5, 55.0, 412.0, nil, "Sala A"},
		})

		_, err := loader.Load(data)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, KindNoValidRows, loadErr.Kind)
	})

	t.Run("progress reports the final row count", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Temperatura", "Umidade", "CO2", "Data", "Ambiente"},
			{23.5, 55.0, 412.0, "05/03/2024", "Sala A"},
			{23.5, 55.0, 412.0, "not a date", "Sala A"},
			{24.1, 52.0, 430.0, "06/03/2024", "Sala B"},
		})

		var reports []int
		samples, skipped, err := loader.LoadWithProgress(data, func(rowsRead int) {
			reports = append(reports, rowsRead)
		})
		require.NoError(t, err)
		require.Len(t, samples, 2)
		assert.Equal(t, 1, skipped)
		// Skipped rows still count as read.
		assert.Equal(t, []int{3}, reports)
	})

	t.Run("progress fires per interval without a duplicate final report", func(t *testing.T) {
		rows := make([][]interface{}, 0, progressInterval+1)
		rows = append(rows, []interface{}{"Temperatura", "Umidade", "CO2", "Data", "Ambiente"})
		for i := 0; i < progressInterval; i++ {
			rows = append(rows, []interface{}{23.5, 55.0, 412.0, "05/03/2024", "Sala A"})
		}

		var reports []int
		samples, _, err := loader.LoadWithProgress(buildWorkbook(t, rows), func(rowsRead int) {
			reports = append(reports, rowsRead)
		})
		require.NoError(t, err)
		require.Len(t, samples, progressInterval)
		assert.Equal(t, []int{progressInterval}, reports)
	})

	t.Run("only the first sheet is read", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()

		first := f.GetSheetName(0)
		require.NoError(t, f.SetCellValue(first, "A1", "header"))
		require.NoError(t, f.SetCellValue(first, "A2", 23.5))
		require.NoError(t, f.SetCellValue(first, "B2", 55.0))
		require.NoError(t, f.SetCellValue(first, "C2", 412.0))
		require.NoError(t, f.SetCellValue(first, "D2", "05/03/2024"))
		require.NoError(t, f.SetCellValue(first, "E2", "Sala A"))

		_, err := f.NewSheet("Outra")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Outra", "A2", "ignored"))

		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))

		samples, err := loader.Load(buf.Bytes())
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.Equal(t, "Sala A", samples[0].Category)
	})
}
