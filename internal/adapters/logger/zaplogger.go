package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tradecalc/internal/ports"
)

// ZapLogger implements ports.Logger with a structured zap logger.
type ZapLogger struct {
	log *zap.Logger
}

// NewZapLogger builds a JSON production logger at the given level.
func NewZapLogger(level LogLevel) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{log: z}, nil
}

// NewZapLoggerFrom wraps an existing zap logger.
func NewZapLoggerFrom(z *zap.Logger) *ZapLogger {
	return &ZapLogger{log: z}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

func (l *ZapLogger) Debug(_ context.Context, msg string, fields ...ports.Fields) {
	l.log.Debug(msg, zapFields(fields)...)
}

func (l *ZapLogger) Info(_ context.Context, msg string, fields ...ports.Fields) {
	l.log.Info(msg, zapFields(fields)...)
}

func (l *ZapLogger) Warn(_ context.Context, msg string, fields ...ports.Fields) {
	l.log.Warn(msg, zapFields(fields)...)
}

func (l *ZapLogger) Error(_ context.Context, err error, msg string, fields ...ports.Fields) {
	l.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func zapFields(fields []ports.Fields) []zap.Field {
	merged := mergeFields(fields)
	out := make([]zap.Field, 0, len(merged)+1)
	for k, v := range merged {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New returns the logger selected by format: "json" gives a zap logger,
// anything else the standard text logger.
func New(format string, level LogLevel) (ports.Logger, error) {
	if strings.EqualFold(format, "json") {
		z, err := NewZapLogger(level)
		if err != nil {
			return nil, err
		}
		return z, nil
	}
	return NewStdLogger(level), nil
}
