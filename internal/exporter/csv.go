package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"envchart/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize the file as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the pivot table to w as CSV. The header row is
// "Data" followed by the categories in the given order; data rows keep
// the pivot's day order.
func WriteCSV(w io.Writer, rows []domain.PivotRow, categories []string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(w)

	header := append([]string{"Data"}, categories...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, 0, len(categories)+1)
		record = append(record, row.Day)
		for _, category := range categories {
			value, ok := row.Values[category]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, formatValue(value))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.Day, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
