package domain

import (
	"time"
)

// Sample is one validated environmental measurement. Instances are
// immutable once created; the loader replaces the full collection
// wholesale and never mutates installed samples.
type Sample struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	CO2         float64   `json:"co2"`
	Timestamp   time.Time `json:"timestamp"`
	Category    string    `json:"category"`
}

// Parameter selects which measurement a chart or export reads.
type Parameter string

const (
	ParameterTemperature Parameter = "temperature"
	ParameterHumidity    Parameter = "humidity"
	ParameterCO2         Parameter = "co2"
)

// Parameters lists the selectable parameters in display order.
func Parameters() []Parameter {
	return []Parameter{ParameterTemperature, ParameterHumidity, ParameterCO2}
}

// Valid reports whether p names a known measurement.
func (p Parameter) Valid() bool {
	switch p {
	case ParameterTemperature, ParameterHumidity, ParameterCO2:
		return true
	}
	return false
}

// Value extracts the selected measurement from a sample.
func (p Parameter) Value(s Sample) float64 {
	switch p {
	case ParameterHumidity:
		return s.Humidity
	case ParameterCO2:
		return s.CO2
	default:
		return s.Temperature
	}
}

// DateRange is an optional inclusive calendar-day filter. A nil bound
// means unbounded on that side. Start applies at 00:00:00 and End at
// 23:59:59 local time.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// PivotRow is one chart-ready output row: one calendar day with the
// selected parameter's value per category. Categories absent on a day
// are simply missing from Values so the chart can bridge the gap
// instead of drawing a zero. SortKey is the day's local-midnight
// timestamp in milliseconds and is used only for ordering.
type PivotRow struct {
	Day     string             `json:"day"`
	SortKey int64              `json:"sort_key"`
	Values  map[string]float64 `json:"values"`
}

// LoadSummary describes the outcome of a successful dataset load.
type LoadSummary struct {
	Source      string    `json:"source"`
	RowsLoaded  int       `json:"rows_loaded"`
	RowsSkipped int       `json:"rows_skipped"`
	Categories  []string  `json:"categories"`
	FirstDay    time.Time `json:"first_day"`
	LastDay     time.Time `json:"last_day"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// DatasetSummary describes the currently installed dataset.
type DatasetSummary struct {
	Source      string    `json:"source"`
	SampleCount int       `json:"sample_count"`
	Categories  []string  `json:"categories"`
	FirstDay    time.Time `json:"first_day,omitempty"`
	LastDay     time.Time `json:"last_day,omitempty"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
}
