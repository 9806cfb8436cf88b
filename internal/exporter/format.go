package exporter

import "strconv"

// formatValue renders a measurement without trailing zeros, matching
// how the values came out of normalization.
func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
