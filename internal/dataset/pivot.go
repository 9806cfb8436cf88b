package dataset

import (
	"sort"
	"time"

	"envchart/pkg/contracts/domain"
)

// dayKeyFormat is the pt-BR short day label used both for grouping and
// for display on the chart axis.
const dayKeyFormat = "02/01/06"

// FilterByDate keeps samples inside the inclusive date range. The
// start bound applies at 00:00:00 and the end bound at 23:59:59, so a
// one-day range keeps that whole day.
func FilterByDate(samples []domain.Sample, dr domain.DateRange) []domain.Sample {
	var start, end time.Time
	if dr.Start != nil {
		s := *dr.Start
		start = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.Local)
	}
	if dr.End != nil {
		e := *dr.End
		end = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, time.Local)
	}

	out := make([]domain.Sample, 0, len(samples))
	for _, s := range samples {
		if dr.Start != nil && s.Timestamp.Before(start) {
			continue
		}
		if dr.End != nil && s.Timestamp.After(end) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Categories derives the deduplicated, lexicographically sorted set of
// category labels from a (typically already filtered) collection.
func Categories(samples []domain.Sample) []string {
	seen := make(map[string]struct{}, len(samples))
	for _, s := range samples {
		seen[s.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Pivot reshapes samples into one row per distinct calendar day, with
// the selected parameter's value per category. When several samples
// share a (day, category) pair the later one in input order wins
// silently, matching the source system's accumulation behavior. Output
// is ordered ascending by SortKey; ties cannot occur because the
// grouping key is the day itself.
func Pivot(samples []domain.Sample, parameter domain.Parameter) []domain.PivotRow {
	if len(samples) == 0 {
		return []domain.PivotRow{}
	}

	byDay := make(map[string]*domain.PivotRow)
	for _, s := range samples {
		key := s.Timestamp.Format(dayKeyFormat)
		row, ok := byDay[key]
		if !ok {
			row = &domain.PivotRow{
				Day:     key,
				SortKey: s.Timestamp.UnixMilli(),
				Values:  make(map[string]float64),
			}
			byDay[key] = row
		}
		row.Values[s.Category] = parameter.Value(s)
	}

	rows := make([]domain.PivotRow, 0, len(byDay))
	for _, row := range byDay {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SortKey < rows[j].SortKey })
	return rows
}

// FilterAndPivot runs the full reshaping stage: date filter, then
// group-by-day pivot of the selected parameter. Pure and deterministic
// in its inputs.
func FilterAndPivot(samples []domain.Sample, dr domain.DateRange, parameter domain.Parameter) []domain.PivotRow {
	return Pivot(FilterByDate(samples, dr), parameter)
}
