// Package exporter serializes pivoted chart data for download.
//
// Two formats are supported:
//
// CSV: one "Data" column followed by one column per category, with a
// UTF-8 BOM prefix so Excel opens accented category names correctly.
//
// XLSX: the same table written as a workbook, with the date column
// left as text so the day keys survive a round trip through the
// loader's positional schema.
//
// Cells for days where a category has no measurement are left empty
// rather than written as zero.
package exporter
