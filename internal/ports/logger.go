package ports

import "context"

// Fields carries structured key/value pairs attached to a log entry.
type Fields = map[string]interface{}

// Logger is the logging port used throughout the application.
// Implementations live in internal/adapters/logger (standard log and zap).
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	// Error logs err together with msg at Error level.
	Error(ctx context.Context, err error, msg string, fields ...Fields)
}
