// Package services implements the business logic layer of EnvChart.
// It provides a clean separation between HTTP handlers and the dataset
// engine, ensuring that business rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//  1. Context propagation for cancellation and tracing
//  2. Dependency injection for loose coupling
//  3. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides these core services:
//
//   - DatasetService: Workbook ingest, chart queries and exports
//   - HealthService: System health checks and version info
//
// # Error Handling
//
// Services return sentinel errors (ErrNoDataset, ErrLoadSuperseded,
// ErrInvalidParameter, ...) that the transport layer maps onto
// RFC 7807 problem responses. Workbook parse failures pass through as
// *dataset.LoadError so the handler can distinguish an unreadable file
// from a readable-but-empty one.
package services
