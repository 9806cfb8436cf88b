package dataset

import (
	"bytes"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"envchart/pkg/contracts/domain"
)

// Loader reads an uploaded workbook payload into validated samples.
type Loader struct {
	logger *slog.Logger
}

// ProgressFunc receives the running count of data rows read so far,
// skipped rows included.
type ProgressFunc func(rowsRead int)

// progressInterval is how many data rows go by between progress
// callbacks during a load.
const progressInterval = 500

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "dataset.loader")),
	}
}

// Load decodes a binary xlsx payload into an ordered Sample collection.
// Only the first sheet is read; row 1 is always skipped as a header and
// the remaining rows are mapped positionally against the fixed
// five-column schema, regardless of what the header row actually says.
// Failures are always a *LoadError; on failure no samples are returned,
// so a caller holding a previously loaded dataset keeps it intact.
func (l *Loader) Load(data []byte) ([]domain.Sample, error) {
	samples, _, err := l.LoadWithStats(data)
	return samples, err
}

// LoadWithStats is Load plus the count of rows that were present but
// failed validation and were dropped.
func (l *Loader) LoadWithStats(data []byte) ([]domain.Sample, int, error) {
	return l.LoadWithProgress(data, nil)
}

// LoadWithProgress is LoadWithStats with a progress callback, invoked
// every progressInterval data rows and once more with the final count.
// A nil callback disables reporting.
func (l *Loader) LoadWithProgress(data []byte, progress ProgressFunc) ([]domain.Sample, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, newLoadError(KindUnreadableFile, err.Error(), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, newLoadError(KindEmptyWorkbook, "workbook has no sheets", nil)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, newLoadError(KindReadError, err.Error(), err)
	}
	if len(rows) <= 1 {
		return nil, 0, newLoadError(KindEmptyWorkbook, "sheet has no data rows after the header", nil)
	}

	l.logger.Info("parsing workbook",
		slog.String("sheet", sheet),
		slog.Int("data_rows", len(rows)-1))

	samples := make([]domain.Sample, 0, len(rows)-1)
	skipped := 0
	reported := 0
	for i, row := range rows[1:] {
		sheetRow := i + 2 // 1-based, offset past the header
		rec := l.recordFromRow(f, sheet, sheetRow, row)
		sample, ok := ValidateRecord(rec)
		if !ok {
			skipped++
			l.logger.Warn("skipping row with missing or unparseable fields",
				slog.Int("row", sheetRow))
		} else {
			samples = append(samples, sample)
		}
		if progress != nil && (i+1)%progressInterval == 0 {
			reported = i + 1
			progress(reported)
		}
	}
	if progress != nil && reported != len(rows)-1 {
		progress(len(rows) - 1)
	}

	if len(samples) == 0 {
		return nil, skipped, newLoadError(KindNoValidRows, "no valid data rows found in the sheet", nil)
	}

	l.logger.Info("workbook parsed",
		slog.String("sheet", sheet),
		slog.Int("samples", len(samples)),
		slog.Int("skipped", skipped))

	return samples, skipped, nil
}

// recordFromRow maps one sheet row onto the positional schema.
func (l *Loader) recordFromRow(f *excelize.File, sheet string, sheetRow int, row []string) RawRecord {
	cell := func(col int) RawCell {
		if col >= len(row) || row[col] == "" {
			return AbsentCell()
		}
		return classifyCell(f, sheet, sheetRow, col, row[col])
	}
	return RawRecord{
		Temperature: cell(colTemperature),
		Humidity:    cell(colHumidity),
		CO2:         cell(colCO2),
		Date:        cell(colDate),
		Category:    cell(colCategory),
	}
}

// classifyCell decides whether the sheet stores a cell as a number or
// as text. String-typed cells stay strings even when their content is
// numeric, so decimal-comma values reach the string parsing path; for
// untyped cells the raw value decides.
func classifyCell(f *excelize.File, sheet string, sheetRow, col int, raw string) RawCell {
	name, err := excelize.CoordinatesToCellName(col+1, sheetRow)
	if err == nil {
		ct, terr := f.GetCellType(sheet, name)
		if terr == nil {
			switch ct {
			case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
				return StringCell(raw)
			}
		}
	}
	if v, perr := strconv.ParseFloat(raw, 64); perr == nil {
		return NumberCell(v)
	}
	return StringCell(raw)
}
