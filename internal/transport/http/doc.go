// Package http implements the HTTP request handlers for the EnvChart
// web service. It provides a thin layer between HTTP transport and
// business logic, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//  1. Thin handlers - minimal logic, delegate to services
//  2. HTTP-only concerns - request parsing, response formatting
//  3. Error transformation - convert service errors to RFC 7807 problems
//  4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Dataset engine
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// Failures funnel through the centralized errors.ErrorHandler so every
// error body is an application/problem+json document.
package http
