// Package app wires the EnvChart application: configuration loading,
// logging and observability, the dataset engine, the WebSocket hub and
// the HTTP server, plus graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//  1. Load configuration from environment and files
//  2. Initialize logging and OpenTelemetry
//  3. Create the dataset store, loader and WebSocket hub
//  4. Initialize services with their dependencies
//  5. Set up HTTP handlers and middleware
//  6. Configure the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication(frontendFS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM and ensures active requests are
// drained, WebSocket connections are closed and telemetry is flushed
// before the process exits.
//
// All initialization errors are returned to the caller; the package
// never calls os.Exit() itself.
package app
