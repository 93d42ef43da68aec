package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// Calculation Errors
	ErrInvalidInput = errors.New("invalid input")

	// General Errors
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Signal Errors
	ErrNotASignal     = errors.New("message does not contain a trade signal")
	ErrMalformedInput = errors.New("malformed signal record")

	// Database Specific Errors
	ErrQueryFailed = errors.New("database query failed")
)
