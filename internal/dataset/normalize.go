package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial 25569 is 1970-01-01 UTC.
const (
	serialEpochOffset = 25569
	millisPerDay      = 86_400_000
)

// NormalizeNumber interprets an ambiguous temperature/humidity cell as
// a canonical float. Numeric integers with |v| > 1000 are measurements
// stored without their decimal point by the upstream input system
// (3435168 means 34.35168) and are divided by 100000. Strings follow
// the decimal-comma convention when a comma is present ("1.234,56" ->
// 1234.56); multiple dots without a comma are thousands separators
// ("1.234.567" -> 1234567). Malformed cells degrade to 0 so one bad
// cell never sacrifices an otherwise-good row.
func NormalizeNumber(cell RawCell) float64 {
	switch cell.Kind {
	case CellNumber:
		return rescaleInteger(cell.Number)
	case CellString:
		s := cell.Text
		if strings.Contains(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return rescaleInteger(v)
	}
	return 0
}

// NormalizeCO2 applies the deliberately simpler CO2 rule: first comma
// becomes a dot, straight parse, no thousands handling and no scale
// heuristic. The asymmetry versus NormalizeNumber matches the source
// data's encoding and must be preserved.
func NormalizeCO2(cell RawCell) float64 {
	switch cell.Kind {
	case CellNumber:
		return cell.Number
	case CellString:
		s := strings.Replace(cell.Text, ",", ".", 1)
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return v
	}
	return 0
}

// rescaleInteger recovers the intended scale of integers stored
// without their decimal point.
func rescaleInteger(v float64) float64 {
	if v == math.Trunc(v) && math.Abs(v) > 1000 {
		return v / 100000
	}
	return v
}

// NormalizeDate interprets a spreadsheet date cell as a calendar date
// at local midnight. Numeric cells are serial day-numbers: the serial
// is converted to a UTC instant and the date rebuilt from the UTC
// year/month/day components, which avoids the off-by-one-day shift a
// local-timezone read of that instant would introduce. String cells
// must be DD/MM/YYYY; any other shape yields ok=false.
func NormalizeDate(cell RawCell) (time.Time, bool) {
	switch cell.Kind {
	case CellNumber:
		utcMillis := (cell.Number - serialEpochOffset) * millisPerDay
		utc := time.UnixMilli(int64(utcMillis)).UTC()
		return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.Local), true
	case CellString:
		parts := strings.Split(cell.Text, "/")
		if len(parts) != 3 {
			return time.Time{}, false
		}
		day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return time.Time{}, false
		}
		month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return time.Time{}, false
		}
		year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
	}
	return time.Time{}, false
}
