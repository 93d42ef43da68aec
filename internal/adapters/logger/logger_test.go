package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"Warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestStdLogger_FiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerTo(&buf, LevelInfo)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	assert.Empty(t, buf.String())

	l.Info(ctx, "calculated", map[string]interface{}{"symbol": "XRP", "profit": 11.78})
	out := buf.String()
	assert.Contains(t, out, "[INFO] calculated | profit=11.78 symbol=XRP")

	buf.Reset()
	l.Error(ctx, errors.New("boom"), "failed")
	assert.Contains(t, buf.String(), "[ERROR] failed | error: boom")
}

func TestZapLogger_WritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerFrom(zap.New(core))
	ctx := context.Background()

	l.Info(ctx, "calculated", map[string]interface{}{"symbol": "XRP"})
	l.Error(ctx, errors.New("boom"), "failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "calculated", entries[0].Message)
	assert.Equal(t, "XRP", entries[0].ContextMap()["symbol"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNew_SelectsAdapter(t *testing.T) {
	l, err := New("text", LevelInfo)
	require.NoError(t, err)
	assert.IsType(t, &StdLogger{}, l)

	l, err = New("JSON", LevelDebug)
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)
}
