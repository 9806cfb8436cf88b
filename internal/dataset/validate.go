package dataset

import (
	"envchart/pkg/contracts/domain"
)

// ValidateRecord turns a raw row into a Sample, or rejects it. The
// policy is strict at row level and lenient at cell level: the row
// needs its category, all three measurement cells present (zero is a
// valid reading, absent is not), and a parseable date; individual
// malformed numeric cells degrade to 0 inside the normalizers rather
// than rejecting the row.
func ValidateRecord(raw RawRecord) (domain.Sample, bool) {
	date, ok := NormalizeDate(raw.Date)
	if !ok {
		return domain.Sample{}, false
	}

	category := raw.Category.String()
	if category == "" {
		return domain.Sample{}, false
	}

	if raw.Temperature.Kind == CellAbsent ||
		raw.Humidity.Kind == CellAbsent ||
		raw.CO2.Kind == CellAbsent {
		return domain.Sample{}, false
	}

	return domain.Sample{
		Temperature: NormalizeNumber(raw.Temperature),
		Humidity:    NormalizeNumber(raw.Humidity),
		CO2:         NormalizeCO2(raw.CO2),
		Timestamp:   date,
		Category:    category,
	}, true
}
