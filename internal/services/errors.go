package services

import "errors"

// Service-level errors. The HTTP layer maps these onto RFC 7807
// problem responses.
var (
	// Dataset errors
	ErrNoDataset      = errors.New("no dataset loaded")
	ErrLoadSuperseded = errors.New("load superseded by a newer upload")

	// Chart errors
	ErrInvalidParameter = errors.New("unknown chart parameter")
	ErrUnknownPalette   = errors.New("unknown palette")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// WebSocket errors
	ErrWebSocketUpgrade = errors.New("websocket upgrade failed")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
