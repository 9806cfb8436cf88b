// Package api contains API contract definitions for EnvChart.
// Version v1 represents the current stable API version.
package api

// Common request parameters

// DateRangeRequest represents an optional inclusive day range in
// requests. Dates are DD/MM/YYYY, matching the workbook column.
type DateRangeRequest struct {
	From string `json:"from" query:"from" validate:"omitempty,brdate"`
	To   string `json:"to" query:"to" validate:"omitempty,brdate"`
}

// Chart API Requests

// ChartDataRequest represents a request for chart-ready pivoted data
type ChartDataRequest struct {
	Parameter string `json:"parameter" query:"parameter" validate:"required,parameter"`
	From      string `json:"from" query:"from" validate:"omitempty,brdate"`
	To        string `json:"to" query:"to" validate:"omitempty,brdate"`
	Palette   string `json:"palette" query:"palette" validate:"omitempty,max=64"`
}

// Dataset API Requests

// DatasetExportRequest represents a request to download the pivoted dataset
type DatasetExportRequest struct {
	Parameter string `json:"parameter" query:"parameter" validate:"required,parameter"`
	From      string `json:"from" query:"from" validate:"omitempty,brdate"`
	To        string `json:"to" query:"to" validate:"omitempty,brdate"`
	Format    string `json:"format" query:"format" validate:"required,oneof=csv xlsx"`
}

// Health API Requests

// HealthCheckRequest represents a health check request
type HealthCheckRequest struct {
	Verbose bool     `json:"verbose" query:"verbose"`
	Include []string `json:"include" query:"include" validate:"omitempty,dive,oneof=websocket dataset"`
}
