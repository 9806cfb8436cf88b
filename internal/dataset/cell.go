// Package dataset implements the spreadsheet ingestion pipeline: raw
// cell interpretation, per-row validation, workbook loading, and the
// filter/pivot engine that reshapes validated samples into chart-ready
// per-day rows. It has no knowledge of HTTP, WebSocket, or rendering.
package dataset

import "strconv"

// CellKind classifies an untyped spreadsheet cell.
type CellKind int

const (
	CellAbsent CellKind = iota
	CellNumber
	CellString
)

// RawCell is an untrusted cell value as read from the workbook: a
// number, a string, or absent. No invariants hold here; normalization
// and validation happen downstream.
type RawCell struct {
	Kind   CellKind
	Number float64
	Text   string
}

// AbsentCell returns the absent cell value.
func AbsentCell() RawCell { return RawCell{Kind: CellAbsent} }

// NumberCell wraps a numeric cell value.
func NumberCell(v float64) RawCell { return RawCell{Kind: CellNumber, Number: v} }

// StringCell wraps a textual cell value.
func StringCell(s string) RawCell { return RawCell{Kind: CellString, Text: s} }

// String renders the cell the way the source system stringifies it.
func (c RawCell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellString:
		return c.Text
	}
	return ""
}

// RawRecord maps the five fixed source columns of one spreadsheet row.
// Ephemeral: it exists only while the loader walks the sheet.
type RawRecord struct {
	Temperature RawCell
	Humidity    RawCell
	CO2         RawCell
	Date        RawCell
	Category    RawCell
}

// Source column order. Rows are mapped positionally against this
// schema; the header row's literal text is never consulted.
const (
	colTemperature = iota
	colHumidity
	colCO2
	colDate
	colCategory
	columnCount
)
