package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"envchart/pkg/contracts/domain"
)

// WriteXLSX writes the pivot table to w as a single-sheet workbook.
// Day keys go in as text and measurements as numbers; empty cells are
// skipped entirely.
func WriteXLSX(w io.Writer, rows []domain.PivotRow, categories []string, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Dados"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := append([]interface{}{"Data"}, toInterfaces(categories)...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return fmt.Errorf("locate row %d: %w", rowNum, err)
		}
		if err := f.SetCellStr(sheet, cell, row.Day); err != nil {
			return fmt.Errorf("write day %s: %w", row.Day, err)
		}
		for j, category := range categories {
			value, ok := row.Values[category]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+2, rowNum)
			if err != nil {
				return fmt.Errorf("locate cell: %w", err)
			}
			if err := f.SetCellFloat(sheet, cell, value, -1, 64); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("serialize workbook: %w", err)
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
